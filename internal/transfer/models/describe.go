package models

// Progress is a presentation projection of a transfer's position in its
// approval chain. It is a pure function of status and type with no
// authorization semantics.
type Progress struct {
	Stage           string `json:"stage"`
	WaitingFor      string `json:"waiting_for"`
	NextAction      string `json:"next_action"`
	ProgressPercent int    `json:"progress_percent"`
}

const nobody = "No one"

// Describe maps a transfer's status to a fixed stage label and progress
// value. The switch is exhaustive over TransferStatus so a new status
// cannot ship without a projection.
func Describe(t *Transfer) Progress {
	switch t.Status {
	case StatusPendingApproval:
		if t.Type == TypeWardAdmin {
			return Progress{
				Stage:           "Pending Approval",
				WaitingFor:      "Admin of the receiving ward",
				NextAction:      "Receiving ward approval",
				ProgressPercent: 25,
			}
		}
		return Progress{
			Stage:           "Pending Approval",
			WaitingFor:      "WEO of the origin ward",
			NextAction:      "WEO approval",
			ProgressPercent: 25,
		}
	case StatusWeoApproved:
		return Progress{
			Stage:           "WEO Approved",
			WaitingFor:      "Admin of the receiving ward",
			NextAction:      "Receiving ward approval",
			ProgressPercent: 50,
		}
	case StatusWardApproved:
		return Progress{
			Stage:           "Ward Approved",
			WaitingFor:      "VEO of the receiving village",
			NextAction:      "Receiving VEO acceptance",
			ProgressPercent: 75,
		}
	case StatusVeoAccepted:
		return Progress{
			Stage:           "VEO Accepted",
			WaitingFor:      nobody,
			NextAction:      "None",
			ProgressPercent: 100,
		}
	case StatusCompleted:
		return Progress{
			Stage:           "Completed",
			WaitingFor:      nobody,
			NextAction:      "None",
			ProgressPercent: 100,
		}
	case StatusRejected:
		return Progress{
			Stage:           "Rejected",
			WaitingFor:      nobody,
			NextAction:      "None",
			ProgressPercent: 0,
		}
	default:
		return Progress{Stage: string(t.Status), WaitingFor: nobody, NextAction: "None"}
	}
}
