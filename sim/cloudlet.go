package sim

// CloudletState is the job lifecycle state (spec.md §3). A cloudlet is
// Waiting until the local scheduler assigns it, which moves it straight
// to Running; it becomes Finished when its last MI is executed. Assigned
// and Cancelled are defined, but no code in this module sets them.
type CloudletState int

const (
	CloudletWaiting CloudletState = iota
	CloudletAssigned
	CloudletRunning
	CloudletFinished
	CloudletCancelled
)

func (s CloudletState) String() string {
	switch s {
	case CloudletWaiting:
		return "Waiting"
	case CloudletAssigned:
		return "Assigned"
	case CloudletRunning:
		return "Running"
	case CloudletFinished:
		return "Finished"
	case CloudletCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Cloudlet is a compute job (spec.md §3). VMID is -1 until assigned.
type Cloudlet struct {
	ID             int
	ArrivalTime    int64
	LengthMI       int64
	CoresRequired  int
	InputKB        float64
	OutputKB       float64
	State          CloudletState
	VMID           int
	StartTime      int64
	FinishTime     int64
	RemainingMI    int64 // decremented as the VM executes it
}

// NewCloudlet constructs a Waiting cloudlet.
func NewCloudlet(id int, arrival int64, lengthMI int64, cores int, inKB, outKB float64) *Cloudlet {
	return &Cloudlet{
		ID:            id,
		ArrivalTime:   arrival,
		LengthMI:      lengthMI,
		CoresRequired: cores,
		InputKB:       inKB,
		OutputKB:      outKB,
		State:         CloudletWaiting,
		VMID:          -1,
		RemainingMI:   lengthMI,
	}
}
