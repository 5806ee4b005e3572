// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/poiesic/pdfrag/ai"
	"github.com/poiesic/pdfrag/core"
	"github.com/tmc/langchaingo/prompts"
)

// DefaultK is the number of chunks retrieved as context for each question.
const DefaultK = 15

const (
	banner       = "=== Chat de Perguntas e Respostas ==="
	exitHint     = "Digite 'sair' para encerrar o chat"
	inputPrompt  = "\nSua pergunta: "
	farewell     = "Encerrando o chat. Até logo!"
	answerHeader = "\nResposta:"
	errorFormat  = "\nOcorreu um erro ao processar sua pergunta: %v\n"
)

var separator = strings.Repeat("-", 90)

// Retriever finds the chunks most relevant to a question.
// search.Searcher satisfies it.
type Retriever interface {
	FindSimilar(ctx context.Context, query string, limit int) ([]*core.SearchResult, error)
}

// Turn is the outcome of one question. Err is set when retrieval or
// generation failed; Context and Answer hold whatever was produced first.
type Turn struct {
	Question string
	Context  string
	Answer   string
	Err      error
}

// OK reports whether the turn produced an answer.
func (t Turn) OK() bool {
	return t.Err == nil
}

// Session answers questions from retrieved context.
type Session struct {
	retriever Retriever
	model     ai.ChatModel
	prompt    prompts.PromptTemplate
	k         int
	logger    *slog.Logger
}

// Option configures a Session.
type Option func(*Session) error

// WithK sets how many chunks are retrieved per question.
// Default is DefaultK.
func WithK(k int) Option {
	return func(s *Session) error {
		if k < 1 {
			return ErrInvalidK
		}
		s.k = k
		return nil
	}
}

// WithPrompt replaces the default prompt template.
func WithPrompt(prompt prompts.PromptTemplate) Option {
	return func(s *Session) error {
		s.prompt = prompt
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSession creates a chat session.
func NewSession(retriever Retriever, model ai.ChatModel, opts ...Option) (*Session, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if model == nil {
		return nil, ErrChatModelRequired
	}

	s := &Session{
		retriever: retriever,
		model:     model,
		prompt:    NewPrompt(),
		k:         DefaultK,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "chat")

	return s, nil
}

// Ask retrieves context for question and asks the model. Failures are
// reported in the returned Turn rather than as an error, so a caller can
// keep the conversation going.
func (s *Session) Ask(ctx context.Context, question string) Turn {
	turn := Turn{Question: question}

	results, err := s.retriever.FindSimilar(ctx, question, s.k)
	if err != nil {
		turn.Err = err
		s.logger.Warn("retrieval failed", "err", err)
		return turn
	}
	turn.Context = BuildContext(results)

	prompt, err := s.prompt.Format(map[string]any{
		VarContext:  turn.Context,
		VarQuestion: question,
	})
	if err != nil {
		turn.Err = fmt.Errorf("formatting prompt: %w", err)
		return turn
	}

	answer, err := s.model.Complete(ctx, prompt)
	if err != nil {
		turn.Err = err
		s.logger.Warn("completion failed", "err", err)
		return turn
	}
	turn.Answer = answer

	s.logger.Debug("answered question", "chunks", len(results), "answer_len", len(answer))
	return turn
}

// Run reads questions from in, one per line, and writes answers to out
// until an exit command, end of input, or cancellation of ctx. Cancellation
// is noticed while waiting for input, not only between questions.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, banner)
	fmt.Fprintln(out, exitHint)

	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, inputPrompt)
		var line inputLine
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case line = <-lines:
		}
		if line.err != nil {
			fmt.Fprintln(out)
			if errors.Is(line.err, io.EOF) {
				return nil
			}
			return line.err
		}

		if IsExitCommand(line.text) {
			fmt.Fprintln(out, farewell)
			return nil
		}

		turn := s.Ask(ctx, line.text)
		if turn.OK() {
			fmt.Fprintln(out, answerHeader)
			fmt.Fprintln(out, turn.Answer)
		} else {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			fmt.Fprintf(out, errorFormat, turn.Err)
		}
		fmt.Fprintln(out, separator)
		fmt.Fprintln(out, separator)
	}
}

// inputLine is one line of input without its line ending, or the read error
// that ended the input (io.EOF at the end).
type inputLine struct {
	text string
	err  error
}

// readLines reads in on its own goroutine so the caller can stop waiting
// when its context ends. Lines have no length limit. The goroutine exits
// after the first read error or once done is closed and it next tries to send.
func readLines(in io.Reader, done <-chan struct{}) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		reader := bufio.NewReader(in)
		for {
			text, err := reader.ReadString('\n')
			if text != "" {
				text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
				select {
				case lines <- inputLine{text: text}:
				case <-done:
					return
				}
			}
			if err != nil {
				select {
				case lines <- inputLine{err: err}:
				case <-done:
				}
				return
			}
		}
	}()
	return lines
}
