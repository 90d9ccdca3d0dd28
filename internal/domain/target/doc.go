// Package target contains the fixed catalog of platforms the project ships
// native binaries for.
//
// A Triple identifies one binary variant (platform, CPU architecture and an
// optional libc flavor). The package also owns the libc mapping and the naming
// rules that turn a triple into npm package, directory and binary names.
package target
