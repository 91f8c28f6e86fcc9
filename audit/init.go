package audit

import "sync"

var (
	globalAuditor Auditor
	globalOnce    sync.Once
)

// InitializeGlobalAuditor sets the process-wide auditor. Call once during
// startup; later calls are ignored.
func InitializeGlobalAuditor(auditor Auditor) {
	globalOnce.Do(func() {
		globalAuditor = auditor
	})
}

// GlobalAuditor returns the process-wide auditor, or nil before
// initialization.
func GlobalAuditor() Auditor {
	return globalAuditor
}

// ResetGlobalAuditorForTesting clears the global instance so tests can
// reinstall their own.
func ResetGlobalAuditorForTesting() {
	globalAuditor = nil
	globalOnce = sync.Once{}
}
