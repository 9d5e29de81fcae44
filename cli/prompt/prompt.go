// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prompt

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/manifoldco/promptui"

	"github.com/ava-labs/countervm/utils"
)

var (
	ErrInputEmpty      = errors.New("input is empty")
	ErrInvalidChoice   = errors.New("invalid choice")
	ErrIndexOutOfRange = errors.New("index out-of-range")
)

// ParseChoice parses an index in [0, maxChoice).
func ParseChoice(input string, maxChoice int) (int, error) {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return -1, ErrInputEmpty
	}
	index, err := strconv.Atoi(input)
	if err != nil {
		return -1, err
	}
	if index >= maxChoice || index < 0 {
		return -1, ErrIndexOutOfRange
	}
	return index, nil
}

// ParseUint64 parses a base 10 counter value.
func ParseUint64(input string) (uint64, error) {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return 0, ErrInputEmpty
	}
	return strconv.ParseUint(input, 10, 64)
}

func parseYesNo(input string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return false, ErrInputEmpty
	case "y":
		return true, nil
	case "n":
		return false, nil
	default:
		return false, ErrInvalidChoice
	}
}

func Choice(label string, maxChoice int) (int, error) {
	if maxChoice == 1 {
		utils.Outf("{{yellow}}%s:{{/}} 0 [auto-selected]\n", label)
		return 0, nil
	}
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := ParseChoice(input, maxChoice)
			return err
		},
	}
	rawIndex, err := promptText.Run()
	if err != nil {
		return -1, err
	}
	return ParseChoice(rawIndex, maxChoice)
}

func Uint64(label string) (uint64, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := ParseUint64(input)
			return err
		},
	}
	rawValue, err := promptText.Run()
	if err != nil {
		return 0, err
	}
	return ParseUint64(rawValue)
}

func Continue() (bool, error) {
	promptText := promptui.Prompt{
		Label: "continue (y/n)",
		Validate: func(input string) error {
			_, err := parseYesNo(input)
			return err
		},
	}
	rawContinue, err := promptText.Run()
	if err != nil {
		return false, err
	}
	cont, err := parseYesNo(rawContinue)
	if err != nil {
		return false, err
	}
	if !cont {
		utils.Outf("{{red}}exiting...{{/}}\n")
	}
	return cont, nil
}

func ID(label string) (ids.ID, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return ErrInputEmpty
			}
			_, err := ids.FromString(strings.TrimSpace(input))
			return err
		},
	}
	rawID, err := promptText.Run()
	if err != nil {
		return ids.Empty, err
	}
	return ids.FromString(strings.TrimSpace(rawID))
}
