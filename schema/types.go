package schema

// NodeType distinguishes an intermediate schema node from a leaf (§3.4).
type NodeType string

const (
	NodeTypeLeaf NodeType = "leaf"
	NodeTypeNode NodeType = "node"
)

// LeafType further classifies a leaf node.
type LeafType string

const (
	LeafProperty      LeafType = "property"
	LeafCommand       LeafType = "command"
	LeafState         LeafType = "state"
	LeafAlarmCondition LeafType = "alarmCondition"
)

// AccessMode controls who may write a leaf and when. Write implies
// reconfigurable.
type AccessMode int

const (
	AccessInit AccessMode = 1 << iota
	AccessRead
	AccessWrite
)

func (m AccessMode) String() string {
	switch m {
	case AccessInit:
		return "init"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "init|read|write"
	}
}

// Has reports whether mask m includes mode bit b.
func (m AccessMode) Has(b AccessMode) bool { return m&b != 0 }

// Assignment controls whether a leaf must, may, or is not meant to be
// supplied by a user at all.
type Assignment string

const (
	AssignmentMandatory Assignment = "mandatory"
	AssignmentOptional  Assignment = "optional"
	AssignmentInternal  Assignment = "internal"
)

// DisplayType is a UI/plumbing hint. OutputSchema marks a pipeline-output
// schema subtree (spec §4.3.3): the system, not the user, populates it.
type DisplayType string

const (
	DisplayTypeNone         DisplayType = ""
	DisplayTypeOutputSchema DisplayType = "OutputSchema"
)

// ArchivePolicy controls logger sampling for a leaf.
type ArchivePolicy string

const (
	ArchiveEveryEvent ArchivePolicy = "EVERY_EVENT"
	ArchiveEveryShot  ArchivePolicy = "EVERY_SHOT"
	ArchiveNoArchiving ArchivePolicy = "NO_ARCHIVING"
)
