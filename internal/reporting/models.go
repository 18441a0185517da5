package reporting

import (
	"time"

	"eventmis/internal/audit"
)

// Stats breaks the trail down by action.
// TotalTransactions always equals the sum of the named counts plus OtherCount.
type Stats struct {
	TotalTransactions int `json:"totalTransactions"`
	CreateCount       int `json:"createCount"`
	UpdateCount       int `json:"updateCount"`
	DeleteCount       int `json:"deleteCount"`
	ArchiveCount      int `json:"archiveCount"`
	RestoreCount      int `json:"restoreCount"`
	LoginCount        int `json:"loginCount"`
	OtherCount        int `json:"otherCount"`
}

type Report struct {
	Transactions []audit.Entry            `json:"transactions"`
	Stats        Stats                    `json:"stats"`
	ByAction     map[string][]audit.Entry `json:"byAction"`
	ByEntity     map[string][]audit.Entry `json:"byEntity"`
	Timestamp    time.Time                `json:"timestamp"`
}

// Filter narrows a transaction list. Empty fields (or "all") match everything.
// From and To are inclusive.
type Filter struct {
	Action string
	Entity string
	User   string
	From   time.Time
	To     time.Time
}

func (f Filter) IsZero() bool {
	return f.Action == "" && f.Entity == "" && f.User == "" && f.From.IsZero() && f.To.IsZero()
}

// Dashboard is the admin landing summary.
type Dashboard struct {
	EventsByStatus         map[string]int `json:"eventsByStatus"`
	TotalEvents            int            `json:"totalEvents"`
	PendingWebsiteBookings int            `json:"pendingWebsiteBookings"`
	ArchivedEvents         int            `json:"archivedEvents"`
	TotalIncome            float64        `json:"totalIncome"`
	TotalExpense           float64        `json:"totalExpense"`
	NetIncome              float64        `json:"netIncome"`
	UnreadMessages         int            `json:"unreadMessages"`
	RecentActivity         []audit.Entry  `json:"recentActivity"`
	GeneratedAt            time.Time      `json:"generatedAt"`
}
