package feature

// Category groups features in the catalog and the admin console.
type Category string

const (
	CategoryAnalytics      Category = "analytics"
	CategorySecurity       Category = "security"
	CategoryPayments       Category = "payments"
	CategoryCommunications Category = "communications"
	CategoryAutomation     Category = "automation"
	CategoryUsers          Category = "users"
	CategoryMarketing      Category = "marketing"
	CategorySettings       Category = "settings"
	CategoryIntegrations   Category = "integrations"
	CategoryDesign         Category = "design"
)

var allCategories = []Category{
	CategoryAnalytics,
	CategorySecurity,
	CategoryPayments,
	CategoryCommunications,
	CategoryAutomation,
	CategoryUsers,
	CategoryMarketing,
	CategorySettings,
	CategoryIntegrations,
	CategoryDesign,
}

// AllCategories returns the closed category set in display order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is an informational lifecycle label. It does not decide whether a feature
// is on; Enabled does.
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusBeta       Status = "beta"
	StatusDeprecated Status = "deprecated"
	StatusComingSoon Status = "coming_soon"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBeta, StatusDeprecated, StatusComingSoon:
		return true
	}
	return false
}
