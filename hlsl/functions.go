// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"

	"github.com/gogpu/shtrans/types"
)

// Param is a function parameter. Its type carries the parameter
// qualifier.
type Param struct {
	Name string
	Type *types.Type
}

// Function is a user or internal function signature.
type Function struct {
	Name   string
	Symbol types.SymbolType
	Return *types.Type
	Params []Param
}

// paramTypes returns the parameter types in order.
func (fn *Function) paramTypes() []*types.Type {
	ts := make([]*types.Type, len(fn.Params))
	for i, p := range fn.Params {
		ts[i] = p.Type
	}
	return ts
}

// FunctionName returns the HLSL name of fn: decorated, plus a suffix for
// parameter types HLSL overloading cannot tell apart.
func FunctionName(fn *Function) string {
	if fn.Name == "main" && fn.Symbol != types.SymbolInternal {
		return "gl_main"
	}
	return DecorateFunctionIfNeeded(fn.Name, fn.Symbol) + DisambiguateFunctionName(fn.paramTypes())
}

// PrototypeString returns the forward declaration of fn.
func PrototypeString(fn *Function) string {
	var sb strings.Builder
	sb.WriteString(TypeString(fn.Return))
	sb.WriteByte(' ')
	sb.WriteString(FunctionName(fn))
	sb.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		q := p.Type.Qualifier()
		if q == types.QualTemporary {
			q = types.QualParamIn
		}
		sb.WriteString(QualifierString(q))
		sb.WriteByte(' ')
		sb.WriteString(TypeString(p.Type))
		sb.WriteByte(' ')
		if p.Name == "" {
			sb.WriteString(UnnamedIdentifier)
		} else {
			sb.WriteString(Decorate(p.Name))
		}
		sb.WriteString(ArrayString(p.Type))
	}
	sb.WriteString(");\n")
	return sb.String()
}
