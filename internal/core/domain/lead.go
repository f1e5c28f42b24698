package domain

import "time"

// LeadStatus is the follow-up state of a captured customer lead.
type LeadStatus string

const (
	LeadNew           LeadStatus = "new"
	LeadContacted     LeadStatus = "contacted"
	LeadFollowUp      LeadStatus = "follow-up"
	LeadClosed        LeadStatus = "closed"
	LeadInterested    LeadStatus = "interested"
	LeadNotInterested LeadStatus = "not interested"
	LeadNotAnswered   LeadStatus = "not answered"
)

var leadStatuses = map[LeadStatus]struct{}{
	LeadNew: {}, LeadContacted: {}, LeadFollowUp: {}, LeadClosed: {},
	LeadInterested: {}, LeadNotInterested: {}, LeadNotAnswered: {},
}

func (s LeadStatus) Valid() bool {
	_, ok := leadStatuses[s]
	return ok
}

// BaseLeadStatuses are always reported by lead statistics, even at zero.
var BaseLeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadFollowUp, LeadClosed}

// Customer is a lead captured through the public contact form.
type Customer struct {
	ID          string     `json:"id"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Location    string     `json:"location"`
	Status      LeadStatus `json:"status"`
	Notes       string     `json:"notes"`
	LastUpdated time.Time  `json:"lastUpdated"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Contact is a general inquiry submitted through the public site.
type Contact struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}
