package input

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// parseMouseLocation parses `xdotool getmouselocation --shell` output:
//
//	X=812
//	Y=433
//	SCREEN=0
//	WINDOW=62914567
func parseMouseLocation(output string) (int, int, error) {
	var x, y int
	var haveX, haveY bool

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		switch key {
		case "X":
			x, haveX = n, true
		case "Y":
			y, haveY = n, true
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, err
	}
	if !haveX || !haveY {
		return 0, 0, fmt.Errorf("unexpected mouse location output %q", output)
	}
	return x, y, nil
}

// parseDisplayGeometry parses `xdotool getdisplaygeometry` output ("1920 1080").
func parseDisplayGeometry(output string) (int, int, error) {
	fields := strings.Fields(output)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected display geometry output %q", output)
	}
	w, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse display width: %v", err)
	}
	h, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse display height: %v", err)
	}
	return w, h, nil
}
