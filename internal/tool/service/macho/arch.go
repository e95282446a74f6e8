package macho

import (
	"debug/macho"
	"fmt"
	"slices"
)

const (
	cpuArm64_32 macho.Cpu = 0x0200000c

	subtypeMask    = 0x00ffffff
	subtypeArm64e  = 2
	subtypeX86_64h = 8
	subtypeArmV7   = 9
	subtypeArmV7s  = 11
	subtypeArmV7k  = 12
)

// ArchName renders a cpu type and subtype the way the toolchain names them.
func ArchName(cpu macho.Cpu, subCpu uint32) string {
	sub := subCpu & subtypeMask
	switch cpu {
	case macho.CpuArm64:
		if sub == subtypeArm64e {
			return "arm64e"
		}
		return "arm64"
	case cpuArm64_32:
		return "arm64_32"
	case macho.CpuAmd64:
		if sub == subtypeX86_64h {
			return "x86_64h"
		}
		return "x86_64"
	case macho.Cpu386:
		return "i386"
	case macho.CpuArm:
		switch sub {
		case subtypeArmV7s:
			return "armv7s"
		case subtypeArmV7k:
			return "armv7k"
		case subtypeArmV7:
			return "armv7"
		}
		return "arm"
	}
	return fmt.Sprintf("cpu%d", uint32(cpu))
}

// Intersect returns the entries of have that also appear in valid, in have's order.
func Intersect(have, valid []string) []string {
	var out []string
	for _, a := range have {
		if slices.Contains(valid, a) {
			out = append(out, a)
		}
	}
	return out
}

// Difference returns the entries of have that do not appear in valid, in have's order.
func Difference(have, valid []string) []string {
	var out []string
	for _, a := range have {
		if !slices.Contains(valid, a) {
			out = append(out, a)
		}
	}
	return out
}
