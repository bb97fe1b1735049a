// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendCommand appends its suffix to the piped string input.
type appendCommand struct {
	cor.BaseCommand
	suffix string
	ran    *[]string
}

func newAppend(name, suffix string, ran *[]string) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix, ran: ran}
}

func (a *appendCommand) Execute(context cor.Context) {
	*a.ran = append(*a.ran, a.GetName())
	in := context.Get(a.GetInputParam()).(string)
	a.Succeed(context, in+a.suffix)
}

// failCommand always records an error.
type failCommand struct {
	cor.BaseCommand
	ran *[]string
}

func (f *failCommand) Execute(context cor.Context) {
	*f.ran = append(*f.ran, f.GetName())
	f.Fail(context, errors.New("failed on purpose"))
}

func TestChainPipesOutputToInput(t *testing.T) {
	var ran []string
	chain := cor.NewBaseChain("pipe").
		AddCommand(newAppend("a", "-a", &ran)).
		AddCommand(newAppend("b", "-b", &ran))

	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(cor.CtxIn, "start")
	chain.Execute(ctx)

	require.False(t, ctx.HasErrors())
	assert.Nil(t, ctx.Err())
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, "start-a-b", ctx.Get(cor.CtxIn))
	assert.Nil(t, ctx.Get(cor.CtxOut))
}

func TestChainStopsAtFirstFailure(t *testing.T) {
	var ran []string
	chain := cor.NewBaseChain("stop").
		AddCommand(newAppend("a", "-a", &ran)).
		AddCommand(&failCommand{BaseCommand: *cor.NewBaseCommand("fail"), ran: &ran}).
		AddCommand(newAppend("c", "-c", &ran))

	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(cor.CtxIn, "start")
	chain.Execute(ctx)

	assert.Equal(t, []string{"a", "fail"}, ran)
	require.Error(t, ctx.Err())
	assert.Contains(t, ctx.GetErrors(), "fail")
}

func TestChainContinueOnFailure(t *testing.T) {
	var ran []string
	chain := cor.NewBaseChain("continue").
		ContinueOnFailure(true).
		AddCommand(&failCommand{BaseCommand: *cor.NewBaseCommand("fail"), ran: &ran}).
		AddCommand(&failCommand{BaseCommand: *cor.NewBaseCommand("fail-again"), ran: &ran})

	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(cor.CtxIn, "start")
	chain.Execute(ctx)

	assert.Equal(t, []string{"fail", "fail-again"}, ran)
	assert.Len(t, ctx.GetErrors(), 2)
	assert.Equal(t, "start", ctx.Get(cor.CtxIn))
}

func TestChainContinuesWithLastInputAfterFailure(t *testing.T) {
	var ran []string
	chain := cor.NewBaseChain("recover").
		ContinueOnFailure(true).
		AddCommand(newAppend("a", "-a", &ran)).
		AddCommand(&failCommand{BaseCommand: *cor.NewBaseCommand("fail"), ran: &ran}).
		AddCommand(newAppend("c", "-c", &ran))

	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(cor.CtxIn, "start")
	chain.Execute(ctx)

	assert.Equal(t, []string{"a", "fail", "c"}, ran)
	assert.Equal(t, "start-a-c", ctx.Get(cor.CtxIn))
	assert.Len(t, ctx.GetErrors(), 1)
}

func TestChainRecordsNonExecutableCommand(t *testing.T) {
	var ran []string
	chain := cor.NewBaseChain("missing-input").AddCommand(newAppend("a", "-a", &ran))

	// No CtxIn value, so the command cannot run.
	ctx := cor.NewBaseContext(context.Background())
	chain.Execute(ctx)

	assert.Empty(t, ran)
	assert.ErrorContains(t, ctx.Err(), "command not executable: a")
}

func TestContextCloseRemovesTempFiles(t *testing.T) {
	file := filepath.Join(t.TempDir(), "spool.mp4")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	ctx := cor.NewBaseContext(context.Background())
	ctx.AddTempFile(file)
	ctx.AddTempFile(filepath.Join(t.TempDir(), "never-created"))
	ctx.Close()

	_, err := os.Stat(file)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, ctx.GetTempFiles())
}
