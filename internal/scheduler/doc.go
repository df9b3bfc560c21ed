// Package scheduler executes expanded job instances. Instances are
// independent parallel units of work drained from a ready channel by a
// bounded worker pool; within one instance, steps run strictly
// sequentially under the instance's wall-clock timeout. No state is shared
// between instances beyond the read-only document.
package scheduler
