// Package cfn hosts the construct app the provisioners declare their stacks
// into, and reads synthesized CloudFormation templates back for inspection
// and rendering.
//
// Constructs are backed by a single jsii kernel process. Every call into the
// construct tree goes through [Do], which serializes callers and returns
// construct failures, raised as panics by the runtime, as errors.
package cfn
