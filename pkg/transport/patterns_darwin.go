//go:build darwin

package transport

// DefaultPatterns lists FTDI, CDC-ACM, CH34x and CP210x bridge nodes.
func DefaultPatterns() []string {
	return []string{
		"/dev/tty.usbserial*",
		"/dev/tty.usbmodem*",
		"/dev/tty.wchusbserial*",
		"/dev/tty.SLAB_USBtoUART*",
		"/dev/ttyUSB*",
		"/dev/ttyACM*",
	}
}

func DefaultDevice() string {
	return "/dev/ttyUSB0"
}
