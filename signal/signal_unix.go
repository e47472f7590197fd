// Copyright (c) 2025-present deep.rent GmbH (https://deep.rent)
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

//go:build unix

package signal

import (
	"os"

	"golang.org/x/sys/unix"
)

// signals maps each trigger to the signal that backs it. Unix-family systems
// support both the interrupt and a distinct termination request.
var signals = map[Trigger]os.Signal{
	Interrupt: os.Interrupt,
	Terminate: unix.SIGTERM,
}
