//go:build !linux && !darwin

package transport

// DefaultPatterns is empty: COM ports are not visible through the filesystem.
func DefaultPatterns() []string {
	return nil
}

func DefaultDevice() string {
	return "COM3"
}
