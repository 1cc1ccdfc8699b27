// Package utils provides small filesystem and formatting helpers shared by
// protoscope commands.
package utils
