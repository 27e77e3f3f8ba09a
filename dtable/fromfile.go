// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package dtable

import (
	"fmt"

	"github.com/SnellerInc/sneller/apps/sorfile"
)

// FromFile parses a SoR file into a local DataFrame and shards it
// across the cluster exactly as FromColumns does, publishing it
// under name rooted at rootNode.
func FromFile(store KV, rootNode int, name string, path string) (*DataFrame, error) {
	local, err := sorfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("dtable.FromFile: %w", err)
	}
	return FromColumns(store, rootNode, name, local.Columns)
}
