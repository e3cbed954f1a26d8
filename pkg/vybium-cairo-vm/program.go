package vybiumcairovm

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
)

// ProgramFile is the JSON form of a Program. Words and cell values are
// decimal (optionally negative) or 0x-prefixed hex strings.
//
//	{"data": ["0x480680017fff8000", "10"], "entry": 1, "ap": 6, "memory": {"4": "7"}}
type ProgramFile struct {
	Data   []string          `json:"data"`
	Entry  uint64            `json:"entry"`
	AP     uint64            `json:"ap"`
	Memory map[uint64]string `json:"memory,omitempty"`
}

// Program converts the file into a Program
func (f *ProgramFile) Program() (*Program, error) {
	if len(f.Data) == 0 {
		return nil, &VMError{Code: ErrInvalidProgram, Message: "program file has no data"}
	}

	words := make([]Felt, len(f.Data))
	for i, s := range f.Data {
		w, err := core.ParseFelt(s)
		if err != nil {
			return nil, &VMError{Code: ErrInvalidProgram, Message: fmt.Sprintf("word %d", i), Cause: err}
		}
		words[i] = w
	}

	p := NewProgram(words, f.Entry, f.AP)
	for a, s := range f.Memory {
		v, err := core.ParseFelt(s)
		if err != nil {
			return nil, &VMError{Code: ErrInvalidProgram, Message: fmt.Sprintf("memory cell %d", a), Cause: err}
		}
		p.WithCell(a, v)
	}
	return p, nil
}

// ReadProgram decodes a JSON program
func ReadProgram(r io.Reader) (*Program, error) {
	var f ProgramFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, &VMError{Code: ErrInvalidProgram, Message: "failed to decode program", Cause: err}
	}
	return f.Program()
}

// LoadProgram reads a JSON program from path
func LoadProgram(path string) (*Program, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &VMError{Code: ErrInvalidProgram, Message: "failed to open program", Cause: err}
	}
	defer file.Close()
	return ReadProgram(file)
}
