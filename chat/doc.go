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


// Package chat implements the question-answering loop.
//
// Each question retrieves the DefaultK nearest chunks, joins their text into
// the prompt's context slot and sends the rendered prompt to the chat model.
// A failed turn is printed and the loop moves on to the next question.
//
// Typing sair, exit or quit (any case) ends the session.
package chat
