package constants

// ComplaintStatus is the lifecycle state of a complaint ticket.
type ComplaintStatus string

// Stable values (store these exact strings in DB).
const (
	ComplaintPending    ComplaintStatus = "pending"    // newly submitted
	ComplaintProcessing ComplaintStatus = "processing" // picked up by an admin
	ComplaintResolved   ComplaintStatus = "resolved"
	ComplaintClosed     ComplaintStatus = "closed"
)

var allStatuses = []ComplaintStatus{ComplaintPending, ComplaintProcessing, ComplaintResolved, ComplaintClosed}

// ValidComplaintStatus reports whether s is a known status.
func ValidComplaintStatus(s string) bool {
	for _, st := range allStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}
