package patcher

// Patch is one named modification the patcher can apply or skip. Entries are
// parsed fresh per discovery run; duplicate names from a malformed log are
// passed through rather than deduplicated.
type Patch struct {
	Name        string // token, no whitespace
	Description string // free text
}

// Toolchain holds the three artifact paths the patcher needs. Resolved once
// at startup and passed read-only.
type Toolchain struct {
	CLI          string // patcher CLI jar
	Integrations string // integrations bundle
	Patches      string // patch bundle
}

// Options describes one patcher invocation. Exclude, DeploySerial and
// KeystorePath only matter in apply mode.
type Options struct {
	BaseAPK      string
	OutputAPK    string
	TempDir      string
	Toolchain    Toolchain
	Exclude      []string // patch names to skip
	DeploySerial string   // install on this device after patching, "" = no deploy
	KeystorePath string   // sign with this keystore, "" = patcher default
}
