package kernel

// releaseInfo mirrors NUSE_Release_Info: a fixed version string compiled
// into the kernel, not something a Config can override.
const releaseInfo = "nuse-go 1.0"

// ReleaseInformation returns the kernel's release identifier (spec §6).
func ReleaseInformation() string {
	return releaseInfo
}
