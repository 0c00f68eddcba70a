package persist

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/oarkflow/squealx"

	"github.com/oarkflow/permit"
)

//go:embed sql_migrations.sql
var migrationsSQL string

const maxRuleWidth = 6

// Migrate creates the policy_rules table if it does not exist.
func Migrate(db *squealx.DB) error {
	if _, err := db.ExecContext(context.Background(), migrationsSQL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// SQLAdapter persists policy rows in a policy_rules table (squealx). Rules
// are stored one per row, ptype plus up to six values, empty string padded.
// It mirrors every single-rule and batch mutation, so auto-save works for
// both shapes.
type SQLAdapter struct {
	db *squealx.DB
}

func NewSQLAdapter(db *squealx.DB) (*SQLAdapter, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &SQLAdapter{db: db}, nil
}

func ruleParams(ptype string, rule []string) (map[string]any, error) {
	if len(rule) > maxRuleWidth {
		return nil, fmt.Errorf("rule has %d values, table holds %d", len(rule), maxRuleWidth)
	}
	params := map[string]any{"ptype": ptype}
	for i := 0; i < maxRuleWidth; i++ {
		v := ""
		if i < len(rule) {
			v = rule[i]
		}
		params[fmt.Sprintf("v%d", i)] = v
	}
	return params, nil
}

func (a *SQLAdapter) insertRule(ctx context.Context, ptype string, rule []string) error {
	params, err := ruleParams(ptype, rule)
	if err != nil {
		return err
	}
	q := `INSERT INTO policy_rules(ptype, v0, v1, v2, v3, v4, v5) VALUES(:ptype, :v0, :v1, :v2, :v3, :v4, :v5)`
	_, err = a.db.NamedExecContext(ctx, q, params)
	return err
}

func (a *SQLAdapter) LoadPolicy(m permit.Model) error {
	ctx := context.Background()
	q := `SELECT ptype, v0, v1, v2, v3, v4, v5 FROM policy_rules ORDER BY id`
	r, err := a.db.NamedQueryContext(ctx, q, map[string]any{})
	if err != nil {
		return err
	}
	defer r.Close()
	for r.Next() {
		var ptype string
		vals := make([]string, maxRuleWidth)
		if err := r.Scan(&ptype, &vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5]); err != nil {
			return err
		}
		end := len(vals)
		for end > 0 && vals[end-1] == "" {
			end--
		}
		line := permit.PolicyLine(ptype, vals[:end])
		if err := permit.LoadPolicyLine(line, m); err != nil {
			return err
		}
	}
	return r.Err()
}

func (a *SQLAdapter) SavePolicy(m permit.Model) error {
	ctx := context.Background()
	if _, err := a.db.ExecContext(ctx, `DELETE FROM policy_rules`); err != nil {
		return err
	}
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
				if err := a.insertRule(ctx, ptype, rule); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (a *SQLAdapter) AddPolicy(sec, ptype string, rule []string) error {
	return a.insertRule(context.Background(), ptype, rule)
}

func (a *SQLAdapter) AddPolicies(sec, ptype string, rules [][]string) error {
	ctx := context.Background()
	for _, rule := range rules {
		if err := a.insertRule(ctx, ptype, rule); err != nil {
			return err
		}
	}
	return nil
}

func (a *SQLAdapter) RemovePolicy(sec, ptype string, rule []string) error {
	params, err := ruleParams(ptype, rule)
	if err != nil {
		return err
	}
	q := `DELETE FROM policy_rules WHERE ptype = :ptype AND v0 = :v0 AND v1 = :v1 AND v2 = :v2 AND v3 = :v3 AND v4 = :v4 AND v5 = :v5`
	_, err = a.db.NamedExecContext(context.Background(), q, params)
	return err
}

func (a *SQLAdapter) RemovePolicies(sec, ptype string, rules [][]string) error {
	for _, rule := range rules {
		if err := a.RemovePolicy(sec, ptype, rule); err != nil {
			return err
		}
	}
	return nil
}

func (a *SQLAdapter) RemoveFilteredPolicy(sec, ptype string, fieldIndex int, fieldValues ...string) error {
	if fieldIndex+len(fieldValues) > maxRuleWidth {
		return fmt.Errorf("filter spans columns beyond v%d", maxRuleWidth-1)
	}
	where := []string{"ptype = :ptype"}
	params := map[string]any{"ptype": ptype}
	for i, v := range fieldValues {
		if v == "" {
			continue
		}
		col := fmt.Sprintf("v%d", fieldIndex+i)
		where = append(where, fmt.Sprintf("%s = :%s", col, col))
		params[col] = v
	}
	q := `DELETE FROM policy_rules WHERE ` + strings.Join(where, " AND ")
	_, err := a.db.NamedExecContext(context.Background(), q, params)
	return err
}
