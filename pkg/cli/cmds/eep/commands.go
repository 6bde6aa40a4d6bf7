// Package eep provides shell commands to decode sensor telegrams.
package eep

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/tempair.go/pkg/cli/sh"
	"github.com/robotalks/tempair.go/pkg/eep"
)

// TempOutput is the JSON output of the temp command.
type TempOutput struct {
	Profile string  `json:"profile"`
	Tenths  int     `json:"tenths"`
	Celsius float64 `json:"celsius"`
	Display string  `json:"display"`
}

// TeachInOutput is the JSON output of the teachin command.
type TeachInOutput struct {
	Profile      string `json:"profile"`
	Manufacturer uint16 `json:"manufacturer"`
	Supported    bool   `json:"supported"`
}

// Temp decodes temperature data of the named profile.
func Temp(profileName string, hexArgs ...string) (*TempOutput, error) {
	profile, err := eep.ParseProfile(profileName)
	if err != nil {
		return nil, err
	}
	data, err := sh.ParseHex(hexArgs...)
	if err != nil {
		return nil, err
	}
	r, err := eep.DecodeTemperature(profile, data)
	if err != nil {
		return nil, err
	}
	return &TempOutput{
		Profile: profile.String(),
		Tenths:  r.Tenths,
		Celsius: r.Celsius(),
		Display: r.Display(),
	}, nil
}

// TeachIn decodes the profile announced by a 4BS teach-in telegram.
func TeachIn(hexArgs ...string) (*TeachInOutput, error) {
	data, err := sh.ParseHex(hexArgs...)
	if err != nil {
		return nil, err
	}
	profile, manufacturer, err := eep.TeachIn(data)
	if err != nil {
		return nil, err
	}
	return &TeachInOutput{
		Profile:      profile.String(),
		Manufacturer: manufacturer,
		Supported:    eep.Supported(profile),
	}, nil
}

var (
	// TempCmd decodes temperature data.
	TempCmd = ishell.Cmd{
		Name: "temp",
		Help: "EEP DATA(4 bytes)",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("EEP and DATA required"))
				return
			}
			out, err := Temp(c.Args[0], c.Args[1:]...)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, out, fmt.Sprintf("%s°C [%s]", eep.Reading{Tenths: out.Tenths}, out.Display))
		},
	}

	// TeachInCmd decodes a 4BS teach-in telegram.
	TeachInCmd = ishell.Cmd{
		Name: "teachin",
		Help: "DATA(4 bytes)",
		Func: func(c *ishell.Context) {
			out, err := TeachIn(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, out, fmt.Sprintf("%s manufacturer=%03X supported=%v",
				out.Profile, out.Manufacturer, out.Supported))
		},
	}
)

func init() {
	sh.AddCmds(
		&TempCmd,
		&TeachInCmd,
	)
}
