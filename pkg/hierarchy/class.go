// Copyright The VTForge Authors
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

// Package hierarchy models a finalized class inheritance graph and the
// derived-to-base paths the adjustment calculator walks. Classes and
// methods are borrowed from an external type system, the graph only keeps
// stable arena identifiers for them.
package hierarchy

// ClassID is a stable arena index into the class table, identifiers start
// at 1 so the zero value marks an absent reference
type ClassID int32

// MethodID is a stable arena index into the method table, identifiers start
// at 1 so the zero value marks an absent reference
type MethodID int32

const (
	// InvalidClass marks an absent class reference
	InvalidClass ClassID = 0
	// InvalidMethod marks an absent method reference
	InvalidMethod MethodID = 0
)

// Base is one direct inheritance edge of a class
type Base struct {
	Class   ClassID
	Virtual bool

	// Placed marks a base the external layout engine already positioned,
	// Offset is then its fixed byte offset inside the deriving class.
	// Unplaced bases are positioned by the layout table. Virtual bases
	// ignore both, their placement depends on the complete object.
	Placed bool
	Offset int64
}

// Class is one node of the inheritance graph
type Class struct {
	ID          ClassID
	Name        string
	MangledName string

	// Bases in declaration order
	Bases []Base

	// Methods declared virtual in this class, in declaration order
	Methods []MethodID
}

// Method is one virtual method declaration
type Method struct {
	ID          MethodID
	Class       ClassID
	Name        string
	MangledName string

	// CovariantReturn is the class the return type points to when the
	// method participates in covariant return adjustment, InvalidClass
	// otherwise.
	CovariantReturn ClassID
}
