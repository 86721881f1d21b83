package engine

import (
	"sort"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
)

// deviceRegistry maps emulation names to chromedp device presets.
var deviceRegistry = map[string]chromedp.Device{
	"BlackBerry Z30": device.BlackBerryZ30,
	"Galaxy Note 3":  device.GalaxyNote3,
	"Galaxy S5":      device.GalaxyS5,
	"iPad":           device.IPad,
	"iPad Mini":      device.IPadMini,
	"iPad Pro":       device.IPadPro,
	"iPhone 5":       device.IPhone5,
	"iPhone 6":       device.IPhone6,
	"iPhone 6 Plus":  device.IPhone6Plus,
	"iPhone 7":       device.IPhone7,
	"iPhone 8":       device.IPhone8,
	"iPhone 8 Plus":  device.IPhone8Plus,
	"iPhone SE":      device.IPhoneSE,
	"iPhone X":       device.IPhoneX,
	"iPhone XR":      device.IPhoneXR,
	"Nexus 5":        device.Nexus5,
	"Nexus 7":        device.Nexus7,
	"Nexus 10":       device.Nexus10,
	"Pixel 2":        device.Pixel2,
	"Pixel 2 XL":     device.Pixel2XL,
}

// LookupDevice finds a device preset by name, case-insensitively. The empty
// name never matches.
func LookupDevice(name string) (device.Info, bool) {
	if name == "" {
		return device.Info{}, false
	}
	for key, dev := range deviceRegistry {
		if strings.EqualFold(key, name) {
			return dev.Device(), true
		}
	}
	return device.Info{}, false
}

// ListDevices returns the emulatable device names, sorted.
func ListDevices() []string {
	names := make([]string, 0, len(deviceRegistry))
	for name := range deviceRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
