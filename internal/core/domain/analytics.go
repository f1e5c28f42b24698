package domain

// DayCount is the number of records created on one calendar day (YYYY-MM-DD, UTC).
type DayCount struct {
	Day   string `json:"_id"`
	Count int64  `json:"count"`
}

// CategoryCount is the number of records sharing one field value.
type CategoryCount struct {
	Category string `json:"_id"`
	Count    int64  `json:"count"`
}

// DashboardStats excludes admin accounts from every user tally.
type DashboardStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	ActiveUsers    int64 `json:"activeUsers"`
	InactiveUsers  int64 `json:"inactiveUsers"`
	TotalCustomers int64 `json:"totalCustomers"`
	TotalContacts  int64 `json:"totalContacts"`
	TotalEmployees int64 `json:"totalEmployees"`
	TotalManagers  int64 `json:"totalManagers"`
}

type DashboardSummary struct {
	Stats           DashboardStats `json:"stats"`
	RecentCustomers []*Customer    `json:"recentCustomers"`
	RecentContacts  []*Contact     `json:"recentContacts"`
	RecentUsers     []*User        `json:"recentUsers"`
}

type Analytics struct {
	PeriodDays            int             `json:"period"`
	UserRegistrations     []DayCount      `json:"userRegistrations"`
	CustomerRegistrations []DayCount      `json:"customerRegistrations"`
	ContactSubmissions    []DayCount      `json:"contactSubmissions"`
	RoleDistribution      []CategoryCount `json:"roleDistribution"`
	LocationDistribution  []CategoryCount `json:"locationDistribution"`
}

// SearchScope restricts a search to one collection; ScopeAll searches all three.
type SearchScope string

const (
	ScopeAll       SearchScope = ""
	ScopeUsers     SearchScope = "users"
	ScopeCustomers SearchScope = "customers"
	ScopeContacts  SearchScope = "contacts"
)

func (s SearchScope) Valid() bool {
	switch s {
	case ScopeAll, ScopeUsers, ScopeCustomers, ScopeContacts:
		return true
	}
	return false
}

// Includes reports whether a search in scope s covers collection c.
func (s SearchScope) Includes(c SearchScope) bool {
	return s == ScopeAll || s == c
}

// SearchResult holds one slice per searched collection; unsearched ones stay nil.
type SearchResult struct {
	Users     []*User
	Customers []*Customer
	Contacts  []*Contact
}
