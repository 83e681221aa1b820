package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or TUI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchRemote Phase = iota
	FetchDetail
	CacheWrite
	Prune
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchRemote:
		return "fetch_remote"
	case FetchDetail:
		return "fetch_detail"
	case CacheWrite:
		return "cache_write"
	case Prune:
		return "prune"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchRemoteUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRemote,
		Step:    1,
		Total:   1,
		Message: "Fetching artifact collection...",
	}
}

func fetchDetailUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetail,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching detail (%s)...", name),
	}
}

func cacheWriteUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheWrite,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Caching %s...", name),
	}
}

func pruneUpdate(marked int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Prune,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Pruned %d stale artifacts", marked),
		Data:    marked,
	}
}

func completeUpdate(cached, failed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync complete: %d cached, %d failed", cached, failed),
	}
}
