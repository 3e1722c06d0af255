package models

import (
	"fmt"
	"strings"
)

// Object is a deep-sky catalog entry.
type Object struct {
	Name          string   // catalog designation, e.g. "NGC0224"
	Type          string   // OpenNGC type code, e.g. "G", "OCl"
	Constellation string   // IAU abbreviation, e.g. "And"
	RA            float64  // J2000 right ascension, degrees
	Dec           float64  // J2000 declination, degrees
	HasPosition   bool     // false for duplicates and non-existent entries
	VMag          float64  // visual magnitude
	HasVMag       bool     // false when the catalog has no V magnitude
	Messier       string   // Messier number without prefix, e.g. "031"
	CommonNames   []string // e.g. "Andromeda Galaxy"
}

// DisplayName returns the designation with the Messier number when there is one.
func (o Object) DisplayName() string {
	if o.Messier != "" {
		return fmt.Sprintf("%s (M%s)", o.Name, strings.TrimLeft(o.Messier, "0"))
	}
	return o.Name
}

// MagnitudeString formats the magnitude, or "-" when unknown.
func (o Object) MagnitudeString() string {
	if !o.HasVMag {
		return "-"
	}
	return fmt.Sprintf("%.2f", o.VMag)
}

// typeNames follows the OpenNGC type codes.
var typeNames = map[string]string{
	"*":      "Star",
	"**":     "Double star",
	"*Ass":   "Association of stars",
	"OCl":    "Open Cluster",
	"GCl":    "Globular Cluster",
	"Cl+N":   "Star cluster + Nebula",
	"G":      "Galaxy",
	"GPair":  "Galaxy Pair",
	"GTrpl":  "Galaxy Triplet",
	"GGroup": "Group of galaxies",
	"PN":     "Planetary Nebula",
	"HII":    "HII Ionized region",
	"DrkN":   "Dark Nebula",
	"EmN":    "Emission Nebula",
	"Neb":    "Nebula",
	"RfN":    "Reflection Nebula",
	"SNR":    "Supernova remnant",
	"Nova":   "Nova star",
	"NonEx":  "Nonexistent object",
	"Dup":    "Duplicated record",
	"Other":  "Other classification",
}

// TypeName expands an OpenNGC type code. Unknown codes are returned as is.
func TypeName(code string) string {
	if name, ok := typeNames[code]; ok {
		return name
	}
	return code
}
