package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"driftc/grammar"
)

func TestCounterParsesClassAndFunctions(t *testing.T) {
	program, err := grammar.ParseFile("../examples/counter.ka")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	assert.NotNil(t, program)
	assert.Equal(t, 3, len(program.Items))

	comment := program.Items[0]
	assert.NotNil(t, comment.Comment)
	assert.Equal(t, "// SPDX-License-Identifier: Apache-2.0", comment.Comment.Text)

	class := program.Items[1].Class
	assert.NotNil(t, class)
	assert.Equal(t, "Counter", class.Name.Value)
	assert.NotNil(t, class.Doc)

	assert.Equal(t, 2, len(class.Fields))
	checkField(t, class.Fields[0], "val", "total", "Int")
	checkField(t, class.Fields[1], "var", "label", "String")

	assert.Equal(t, 2, len(class.Methods))
	increment := class.Methods[0]
	assert.Equal(t, "increment", increment.Name.Value)
	assert.True(t, increment.Receiver)
	assert.Equal(t, 1, len(increment.Params))
	assert.Equal(t, "amount", increment.Params[0].Name.Value)
	assert.Equal(t, "Int", increment.Params[0].Type.String())
	assert.NotNil(t, increment.Return)
	assert.Equal(t, "Int", increment.Return.String())

	describe := class.Methods[1]
	assert.Equal(t, "describe", describe.Name.Value)
	assert.Equal(t, "List<Any?>", describe.Params[0].Type.String())

	fn := program.Items[2].Func
	assert.NotNil(t, fn)
	assert.Equal(t, "isPositive", fn.Name.Value)
	assert.False(t, fn.Receiver)
	assert.Equal(t, "Int?", fn.Params[0].Type.String())
	assert.Equal(t, "Boolean", fn.Return.String())

	assert.NotNil(t, fn.Contract)
	assert.Equal(t, 1, len(fn.Contract.Effects))
	effect := fn.Contract.Effects[0]
	assert.Equal(t, "true", effect.ReturnsKind)
	assert.Nil(t, effect.ForEachIndex)
	assert.NotNil(t, effect.Condition)
}

func checkField(t *testing.T, f *grammar.Field, qualifier, name, typ string) {
	t.Helper()
	assert.Equal(t, qualifier, f.Qualifier)
	assert.Equal(t, name, f.Name.Value)
	assert.Equal(t, typ, f.Type.String())
}
