package discovery

import (
	"bufio"
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mt/internal/domain"
	"mt/internal/naming"
)

var (
	// func TestUser(t *testing.T) {
	funcPattern = regexp.MustCompile(`^func\s+(Test\w*)\s*\(\s*\w+\s+\*testing\.T\s*\)`)

	// s.Test("creates a user", func(c *suite.Context) {
	describedPattern = regexp.MustCompile("\\.Test\\(\\s*(\"(?:[^\"\\\\]|\\\\.)*\"|`[^`]*`)")

	// s.SlowThreshold(500 * time.Millisecond)
	thresholdPattern = regexp.MustCompile(`\.SlowThreshold\(\s*([\w\s.*/+-]+?)\s*\)`)
)

// Parser scans test files for test declarations line by line
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// FindDeclarations returns every declaration in a test file: each top-level
// test function and each described test inside it, in source order.
func (p *Parser) FindDeclarations(filePath string) ([]domain.Declaration, error) {
	lines, err := readLines(filePath)
	if err != nil {
		return nil, err
	}

	var (
		decls     []domain.Declaration
		suite     string
		threshold time.Duration
		hasThresh bool
	)

	for i, line := range lines {
		text := strings.TrimSpace(line)

		if name, ok := matchFunc(text); ok {
			suite, threshold, hasThresh = name, 0, false
			decls = append(decls, domain.Declaration{
				Suite:       name,
				Description: naming.Describe(name),
				File:        filePath,
				Line:        i + 1,
			})
			continue
		}
		if suite == "" {
			continue
		}

		if m := thresholdPattern.FindStringSubmatch(text); m != nil {
			if d, err := EvalDuration(m[1]); err == nil {
				threshold, hasThresh = d, true
			}
		}

		if desc, ok := matchDescribed(text); ok {
			decls = append(decls, domain.Declaration{
				Suite:         suite,
				Method:        naming.MethodName(desc),
				Description:   desc,
				File:          filePath,
				Line:          i + 1,
				SlowThreshold: threshold,
				HasThreshold:  hasThresh,
			})
		}
	}

	return decls, nil
}

// IdentityAt returns the identity declared on the given 1-based line, if
// any. A described test needs an enclosing test function above it.
func (p *Parser) IdentityAt(filePath string, line int) (string, bool) {
	lines, err := readLines(filePath)
	if err != nil || line < 1 || line > len(lines) {
		return "", false
	}

	text := strings.TrimSpace(lines[line-1])
	if name, ok := matchFunc(text); ok {
		return name, true
	}

	desc, ok := matchDescribed(text)
	if !ok {
		return "", false
	}
	for i := line - 2; i >= 0; i-- {
		if suite, ok := matchFunc(strings.TrimSpace(lines[i])); ok {
			return naming.Identity(suite, naming.MethodName(desc)), true
		}
	}
	return "", false
}

func matchFunc(text string) (string, bool) {
	m := funcPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func matchDescribed(text string) (string, bool) {
	m := describedPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	desc, err := strconv.Unquote(m[1])
	if err != nil {
		return "", false
	}
	return desc, true
}

func readLines(filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// EvalDuration evaluates a constant duration expression such as
// "500 * time.Millisecond", "time.Second" or "2e9".
func EvalDuration(expr string) (time.Duration, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", expr, err)
	}
	v, err := evalNode(node)
	if err != nil {
		return 0, fmt.Errorf("evaluate duration %q: %w", expr, err)
	}
	return time.Duration(v), nil
}

var timeUnits = map[string]float64{
	"Nanosecond":  float64(time.Nanosecond),
	"Microsecond": float64(time.Microsecond),
	"Millisecond": float64(time.Millisecond),
	"Second":      float64(time.Second),
	"Minute":      float64(time.Minute),
	"Hour":        float64(time.Hour),
}

func evalNode(node ast.Expr) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return 0, fmt.Errorf("unsupported literal %s", n.Value)
		}
		return strconv.ParseFloat(n.Value, 64)
	case *ast.ParenExpr:
		return evalNode(n.X)
	case *ast.SelectorExpr:
		pkg, ok := n.X.(*ast.Ident)
		if !ok || pkg.Name != "time" {
			return 0, fmt.Errorf("unsupported selector")
		}
		unit, ok := timeUnits[n.Sel.Name]
		if !ok {
			return 0, fmt.Errorf("unknown unit time.%s", n.Sel.Name)
		}
		return unit, nil
	case *ast.BinaryExpr:
		x, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}
		y, err := evalNode(n.Y)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.MUL:
			return x * y, nil
		case token.QUO:
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return x / y, nil
		case token.ADD:
			return x + y, nil
		case token.SUB:
			return x - y, nil
		}
		return 0, fmt.Errorf("unsupported operator %s", n.Op)
	}
	return 0, fmt.Errorf("unsupported expression")
}
