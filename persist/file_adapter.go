package persist

import (
	"bufio"
	"bytes"
	"os"
	"sort"
	"strings"

	"github.com/oarkflow/permit"
)

// FileAdapter reads and writes policy rows as CSV-ish lines, one rule per
// line ("p, alice, data1, read"). It snapshots only: per-rule mutations are
// rejected, callers persist through SavePolicy.
type FileAdapter struct {
	filePath string
}

func NewFileAdapter(filePath string) *FileAdapter {
	return &FileAdapter{filePath: filePath}
}

func (a *FileAdapter) LoadPolicy(m permit.Model) error {
	f, err := os.Open(a.filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if err := permit.LoadPolicyLine(sc.Text(), m); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (a *FileAdapter) SavePolicy(m permit.Model) error {
	var buf bytes.Buffer
	for _, sec := range []string{"p", "g"} {
		amap, ok := m[sec]
		if !ok {
			continue
		}
		ptypes := make([]string, 0, len(amap))
		for ptype := range amap {
			ptypes = append(ptypes, ptype)
		}
		sort.Strings(ptypes)
		for _, ptype := range ptypes {
			for _, rule := range amap[ptype].Policy {
				buf.WriteString(permit.PolicyLine(ptype, rule))
				buf.WriteString("\n")
			}
		}
	}
	return os.WriteFile(a.filePath, buf.Bytes(), 0o644)
}

func (a *FileAdapter) AddPolicy(sec, ptype string, rule []string) error {
	return permit.ErrUnsupportedOperation
}

func (a *FileAdapter) RemovePolicy(sec, ptype string, rule []string) error {
	return permit.ErrUnsupportedOperation
}

func (a *FileAdapter) RemoveFilteredPolicy(sec, ptype string, fieldIndex int, fieldValues ...string) error {
	return permit.ErrUnsupportedOperation
}

// StringAdapter loads policy lines from an in-memory text, handy for tests
// and examples. SavePolicy is rejected since there is no backing file.
type StringAdapter struct {
	text string
}

func NewStringAdapter(text string) *StringAdapter {
	return &StringAdapter{text: text}
}

func (a *StringAdapter) LoadPolicy(m permit.Model) error {
	for _, line := range strings.Split(a.text, "\n") {
		if err := permit.LoadPolicyLine(line, m); err != nil {
			return err
		}
	}
	return nil
}

func (a *StringAdapter) SavePolicy(m permit.Model) error {
	return permit.ErrUnsupportedOperation
}

func (a *StringAdapter) AddPolicy(sec, ptype string, rule []string) error {
	return permit.ErrUnsupportedOperation
}

func (a *StringAdapter) RemovePolicy(sec, ptype string, rule []string) error {
	return permit.ErrUnsupportedOperation
}

func (a *StringAdapter) RemoveFilteredPolicy(sec, ptype string, fieldIndex int, fieldValues ...string) error {
	return permit.ErrUnsupportedOperation
}
