// Package naming provides consistent names for declared AWS resources.
//
// Stack names follow the {Kind}Stack-{region} pattern so that stacks for the
// two regions never collide. IAM role names are deterministic so that a
// stack in one region can reference a role declared in another region
// without a cross-region export.
package naming
