package main

import (
	"os"

	"github.com/careerpilot/shadowcal/calendarservice"
)

func main() {
	if err := calendarservice.Run(); err != nil {
		os.Exit(1)
	}
}
