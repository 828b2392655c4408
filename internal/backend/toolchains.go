// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"os"
	"path/filepath"
)

const (
	// NameMSBuild is the MSBuild backend name.
	NameMSBuild = "msbuild"
	// NameDotnet is the dotnet CLI backend name.
	NameDotnet = "dotnet"
	// NameYarn is the yarn backend name used for web app exports.
	NameYarn = "yarn"
	// NameCustom is the configured shell command backend name.
	NameCustom = "custom"

	// DefaultMSBuildPath is the Visual Studio 2022 Community installation of MSBuild.
	DefaultMSBuildPath = `C:\Program Files\Microsoft Visual Studio\2022\Community\MSBuild\Current\Bin\MSBuild.exe`
)

// NewMSBuild returns the MSBuild adapter. It runs `msbuild <project>` from
// PATH and falls back to the Visual Studio installation path.
func NewMSBuild(opts ...Option) *ExecAdapter {
	base := []Option{WithFallbackPaths(DefaultMSBuildPath)}
	a := newExecAdapter(NameMSBuild, "msbuild", append(base, opts...)...)
	a.versionArgs = []string{"-version", "-nologo"}
	return a
}

// NewDotnet returns the dotnet adapter, which runs `dotnet build <project>`.
func NewDotnet(opts ...Option) *ExecAdapter {
	a := newExecAdapter(NameDotnet, "dotnet", opts...)
	a.buildArgs = func(p string) []string { return []string{"build", p} }
	return a
}

// NewYarn returns the yarn adapter. Build takes the web project directory and
// runs `yarn build` inside it. Well-known Node.js installation paths are
// preferred over PATH.
func NewYarn(opts ...Option) *ExecAdapter {
	base := []Option{WithFallbackPaths(yarnPaths()...)}
	a := newExecAdapter(NameYarn, "yarn", append(base, opts...)...)
	a.fallbackFirst = true
	a.buildArgs = func(string) []string { return []string{"build"} }
	a.buildDir = func(dir string) string { return dir }
	return a
}

func yarnPaths() []string {
	paths := []string{
		`C:\Program Files\nodejs\yarn.cmd`,
		`C:\Program Files (x86)\nodejs\yarn.cmd`,
	}
	if profile := os.Getenv("USERPROFILE"); profile != "" {
		paths = append(paths, filepath.Join(profile, "AppData", "Roaming", "npm", "yarn.cmd"))
	}
	return paths
}
