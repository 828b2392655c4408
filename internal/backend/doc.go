// SPDX-License-Identifier: MPL-2.0

// Package backend runs project builds through interchangeable toolchains.
//
// Each Adapter wraps one toolchain (MSBuild, the dotnet CLI, yarn, or a
// configured shell command interpreted by mvdan/sh) and reports an Outcome
// tagged as a success, a tool that could not be launched, or a tool that ran
// and failed. A Chain tries adapters in priority order and returns the first
// success, or the last failure when all of them fail.
package backend
