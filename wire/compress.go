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

package wire

import "github.com/SnellerInc/sneller/compr"

// CompressThreshold is the serialized-size threshold above which
// the KV store compresses a chunk Value before storing it locally.
// Compression is a storage-density optimization only; it is never
// observable through the DataFrame read API.
const CompressThreshold = 4096

var encoder = compr.Compression("zstd")

// Compress returns a zstd-compressed copy of p.
func Compress(p []byte) []byte {
	return encoder.Compress(p, nil)
}

// Decompress reverses Compress. The decompressed size isn't known
// up front, so this goes through compr.DecodeZstd, which grows its
// destination buffer as needed.
func Decompress(p []byte) ([]byte, error) {
	return compr.DecodeZstd(p, nil)
}
