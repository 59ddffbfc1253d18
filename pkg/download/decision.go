package download

// Comparison is the outcome of comparing one property of the local file with the remote.
type Comparison int

const (
	// Unknown means the remote did not report the property.
	Unknown Comparison = iota
	// Equal means the local file agrees with the remote: same size, or a modification time no
	// older than the remote's.
	Equal
	// Unequal means the local file is stale on this property.
	Unequal
)

func (c Comparison) String() string {
	switch c {
	case Equal:
		return "equal"
	case Unequal:
		return "unequal"
	default:
		return "unknown"
	}
}

// Decision is the outcome of the staleness check.
type Decision int

const (
	// DecisionUnresolved means nothing could be compared. Callers choose what to do.
	DecisionUnresolved Decision = iota
	DecisionSkip
	DecisionDownload
)

func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionDownload:
		return "download"
	default:
		return "unresolved"
	}
}

// Decide combines the size and modification time comparisons of an existing local file.
// Any stale signal forces a download; otherwise at least one signal must be known to skip.
func Decide(sizes, modTime Comparison) Decision {
	switch {
	case sizes == Unequal || modTime == Unequal:
		return DecisionDownload
	case sizes == Unknown && modTime == Unknown:
		return DecisionUnresolved
	default:
		return DecisionSkip
	}
}
