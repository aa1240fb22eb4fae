// Package artifacts maps a completed bootstrap result into named
// key/value records and writes them to one of three targets: the
// terminal, a timestamped run directory on the filesystem, or a
// Kubernetes namespace (see the kube package).
package artifacts

// ConflictPolicy decides what happens when a record's target name already
// exists in the store.
type ConflictPolicy string

const (
	// OnConflictFail aborts the whole publish run on an existing object.
	OnConflictFail ConflictPolicy = "fail"
	// OnConflictSkip logs and counts the conflict, then carries on.
	OnConflictSkip ConflictPolicy = "skip"
)

// Discovery annotation. Records meant for later synchronization carry
// AnnotationKey with one of the two reserved values, so a list operation
// can distinguish interface bundles from allocation overrides.
const (
	AnnotationKey                = "bootstrap.forgenet.dev/artifact"
	AnnotationInterfaceBundle    = "interface-bundle"
	AnnotationAllocationOverride = "allocation-override"
)

// Record is one named single-key/value artifact destined for a target
// store.
type Record struct {
	// Name is the object name in the target store (also the file name for
	// the filesystem target).
	Name string
	// DataKey is the single data key the value is stored under.
	DataKey string
	// Value is the record payload.
	Value string
	// Immutable marks the stored object as create-once; the store refuses
	// in-place modification and re-creation is a conflict.
	Immutable bool
	// Sensitive routes the record to the secret store primitive instead
	// of the public one.
	Sensitive bool
	// OnConflict selects the conflict policy for this record.
	OnConflict ConflictPolicy
	// Annotation is the discovery annotation value, empty for records that
	// are never synchronized.
	Annotation string
}
