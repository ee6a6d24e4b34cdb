// Package filesystem abstracts the reads and writes performed around checker
// invocations so snapshot and restore logic can be exercised against fakes.
package filesystem
