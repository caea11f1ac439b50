package models

// All lists the models migrated at startup.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RegistrationInvitation{},
		&OnboardingApplication{},
		&VisaDocument{},
	}
}
