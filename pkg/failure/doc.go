// Package failure defines the error taxonomy shared by the pipeline packages.
//
// Library code wraps errors with one of the constructors (Config, Capacity,
// Resource, Internal) and returns them up the stack. Only the pipeline driver
// turns a classified error into a process exit status via ExitCode.
package failure
