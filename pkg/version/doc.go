// Package version provides version information for the application.
//
// The variables are set at build time with -ldflags, for example:
//
//	-X github.com/MacroPower/synclab/pkg/version.Version=1.2.3
package version
