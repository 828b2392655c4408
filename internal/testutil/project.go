// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// CustomizedManifest is a manifest free of template placeholders.
const CustomizedManifest = `<?xml version="1.0" encoding="utf-8"?>
<RevitAddIns>
	<AddIn Type="Application">
		<Name>Sample</Name>
		<Assembly>Sample\Sample.dll</Assembly>
		<AddInId>5c1f3d5e-2a0b-4a55-9a3c-6f0d2f7e8b11</AddInId>
		<FullClassName>Sample.App</FullClassName>
		<VendorId>Development</VendorId>
		<VendorDescription>Sample add-in</VendorDescription>
		<VendorEmail>dev@example.org</VendorEmail>
	</AddIn>
</RevitAddIns>
`

// TemplateManifest still carries the template placeholder email.
const TemplateManifest = `<?xml version="1.0" encoding="utf-8"?>
<RevitAddIns>
	<AddIn Type="Application">
		<Name>Sample</Name>
		<Assembly>Sample\Sample.dll</Assembly>
		<AddInId>5c1f3d5e-2a0b-4a55-9a3c-6f0d2f7e8b11</AddInId>
		<FullClassName>Sample.App</FullClassName>
		<VendorId>Development</VendorId>
		<VendorDescription>Sample add-in</VendorDescription>
		<VendorEmail>youremail@example.com</VendorEmail>
	</AddIn>
</RevitAddIns>
`

// Project is an add-in project fixture rooted in a temporary directory.
type Project struct {
	t testing.TB
	// Root is the directory a run starts from.
	Root string
	// Dir holds the project file.
	Dir string
	// Name is the project name.
	Name string
}

// NewProject creates {root}/{name}.csproj in a fresh temporary directory.
func NewProject(t testing.TB, name string) *Project {
	t.Helper()
	root := t.TempDir()
	p := &Project{t: t, Root: root, Dir: root, Name: name}
	MustWriteFile(t, p.ProjectPath(), "<Project Sdk=\"Microsoft.NET.Sdk\" />\n")
	return p
}

// ProjectPath returns the project file path.
func (p *Project) ProjectPath() string {
	return filepath.Join(p.Dir, p.Name+".csproj")
}

// ManifestPath returns {Dir}/{Name}.addin.
func (p *Project) ManifestPath() string {
	return filepath.Join(p.Dir, p.Name+".addin")
}

// WithManifest writes the project manifest.
func (p *Project) WithManifest(content string) *Project {
	p.t.Helper()
	MustWriteFile(p.t, p.ManifestPath(), content)
	return p
}

// WithArtifact writes bin/Debug/{file} and returns the project.
func (p *Project) WithArtifact(file string) *Project {
	p.t.Helper()
	MustWriteFile(p.t, p.ArtifactPath(file), "MZ "+file)
	return p
}

// ArtifactPath returns the fixture location of an artifact file.
func (p *Project) ArtifactPath(file string) string {
	return filepath.Join(p.Dir, "bin", "Debug", file)
}
