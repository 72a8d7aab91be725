// Package render formats discovered devices for terminal output
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fako1024/btmon"
	toml "github.com/pelletier/go-toml/v2"
)

// Styles denotes the text styles applied in text mode
type Styles struct {
	Name  lipgloss.Style
	Level lipgloss.Style
}

// PlainStyles leaves all text unstyled
func PlainStyles() Styles {
	return Styles{
		Name:  lipgloss.NewStyle(),
		Level: lipgloss.NewStyle(),
	}
}

// DefaultStyles highlights device names and battery levels. Colors are
// dropped automatically if the output is not a terminal.
func DefaultStyles() Styles {
	return Styles{
		Name:  lipgloss.NewStyle().Bold(true),
		Level: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
}

// FormatDevice renders a single device as `Name: 76%` or, for multi
// component devices, as `Name: L:80% R:90% Case:100%`
func FormatDevice(d btmon.Device, s Styles) string {
	if d.BatteryLevel != nil {
		return fmt.Sprintf("%s: %s", s.Name.Render(d.Name), s.Level.Render(d.BatteryLevel.String()))
	}

	parts := make([]string, 0, 3)
	if d.BatteryLeft != nil {
		parts = append(parts, s.Level.Render("L:"+d.BatteryLeft.String()))
	}
	if d.BatteryRight != nil {
		parts = append(parts, s.Level.Render("R:"+d.BatteryRight.String()))
	}
	if d.BatteryCase != nil {
		parts = append(parts, s.Level.Render("Case:"+d.BatteryCase.String()))
	}
	return fmt.Sprintf("%s: %s", s.Name.Render(d.Name), strings.Join(parts, " "))
}

// Text writes one line per device
func Text(w io.Writer, devices []btmon.Device, s Styles) error {
	for _, d := range devices {
		if _, err := fmt.Fprintln(w, FormatDevice(d, s)); err != nil {
			return err
		}
	}
	return nil
}

// JSON writes all devices as an indented JSON array
func JSON(w io.Writer, devices []btmon.Device) error {
	if devices == nil {
		devices = []btmon.Device{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(devices)
}

// TOML writes all devices as an array of tables
func TOML(w io.Writer, devices []btmon.Device) error {
	doc := struct {
		Devices []btmon.Device `toml:"devices"`
	}{
		Devices: devices,
	}
	return toml.NewEncoder(w).Encode(doc)
}
