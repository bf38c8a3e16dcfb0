// Package async provides utilities for parallel task execution with
// error collection.
//
// [RunParallel] executes independent tasks concurrently and waits for all of
// them. The build plan executor uses it to evaluate the nodes of one plan
// level together.
package async
