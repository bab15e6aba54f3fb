//go:build linux

package transport

// DefaultPatterns lists USB-serial, CDC-ACM, CH341 and on-board UART nodes.
func DefaultPatterns() []string {
	return []string{
		"/dev/ttyUSB*",
		"/dev/ttyACM*",
		"/dev/ttyCH341USB*",
		"/dev/ttyAMA*",
	}
}

func DefaultDevice() string {
	return "/dev/ttyUSB0"
}
