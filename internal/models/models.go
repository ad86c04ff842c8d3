package models

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Recipe{},
		&IngredientSection{},
		&Ingredient{},
		&InstructionSection{},
		&Instruction{},
		&Comment{},
		&PasswordResetToken{},
	}
}
