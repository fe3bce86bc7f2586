// Package job defines the job record and its status state machine.
//
// # Job Record
//
// A [Job] describes one asynchronous operation. Its ID is unique; its Name
// is a logical category shared by many jobs (for example "DELETE_USER").
// Status moves through:
//
//	CREATED → PENDING → SUCCESS
//	CREATED → PENDING → FAILURE
//	CREATED → PENDING → CANCELLED
//	PENDING → ...                 (started without being created first)
//
// Every status a job has entered is recorded in Timestamps as epoch
// milliseconds. Not every timestamp is present because not every action
// needs to be dispatched.
package job
