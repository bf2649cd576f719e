package models

// FormSchema captures the per-form-type knowledge the rule engine needs:
// which field carries the primary income and which numeric fields must be
// present (zero-fill candidates when absent). The open FormData mapping
// stays schemaless at the boundary; this registry is where form-type
// structure lives.
type FormSchema struct {
	PrimaryIncomeField string
	RequiredNumeric    []string
}

var formSchemas = map[FormType]FormSchema{
	FormTypeAnlageV: {
		PrimaryIncomeField: "income_rent",
		RequiredNumeric: []string{
			"income_rent",
			"expense_property_tax",
			"expense_maintenance",
			"expense_insurance",
			"afa_building",
		},
	},
	FormTypeEUeR: {
		PrimaryIncomeField: "income_operating",
		RequiredNumeric: []string{
			"income_operating",
			"expense_office",
			"expense_travel",
		},
	},
	FormTypeUmsatzsteuer: {
		PrimaryIncomeField: "income_taxable_sales",
		RequiredNumeric: []string{
			"income_taxable_sales",
			"expense_input_tax",
		},
	},
}

// SchemaFor returns the field schema for a form type. Unknown form types get
// an empty schema so rule evaluation degrades to the generic checks only.
func SchemaFor(ft FormType) FormSchema {
	return formSchemas[ft]
}
