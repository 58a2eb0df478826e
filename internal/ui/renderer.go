package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/eliasnord/neonpane/internal/state"
)

// ProgramRenderer bridges the view sync controller and the running bubbletea
// program: render calls become messages delivered on the program's own
// goroutine, so view models are never touched concurrently.
//
// The program is attached after construction because the program itself is
// built around the model that holds the controller.
type ProgramRenderer struct {
	mu      sync.Mutex
	program *tea.Program
}

func NewProgramRenderer() *ProgramRenderer {
	return &ProgramRenderer{}
}

func (r *ProgramRenderer) SetProgram(program *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = program
}

func (r *ProgramRenderer) send(msg tea.Msg) {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

func (r *ProgramRenderer) Render(snap state.Snapshot) {
	r.send(SnapshotMsg{Snapshot: snap})
}

func (r *ProgramRenderer) RenderSignIn() {
	r.send(SignInRequiredMsg{})
}
