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

package store

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/netw"
)

func newPair(t *testing.T) (*Store, *Store) {
	t.Helper()
	cluster := netw.NewInProcCluster(2)
	n0 := cluster.Handle(0)
	n1 := cluster.Handle(1)
	if err := n0.Register(0); err != nil {
		t.Fatal(err)
	}
	if err := n1.Register(1); err != nil {
		t.Fatal(err)
	}
	s0 := New(n0)
	s1 := New(n1)
	go s0.Serve()
	go s1.Serve()
	return s0, s1
}

func TestLocalPutGetValue(t *testing.T) {
	s0, s1 := newPair(t)
	defer func() { s0.StopService(); s0.WaitToClose() }()
	defer func() { s1.StopService(); s1.WaitToClose() }()

	k := kv.New("x", 0)
	v := kv.NewValue([]byte("hello"))
	if err := s0.Put(k, v); err != nil {
		t.Fatal(err)
	}
	got, err := s0.GetValue(k)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Bytes(), v.Bytes()) {
		t.Fatalf("got %q want %q", got.Bytes(), v.Bytes())
	}
}

func TestGetValueMissingErrors(t *testing.T) {
	s0, s1 := newPair(t)
	defer func() { s0.StopService(); s0.WaitToClose() }()
	defer func() { s1.StopService(); s1.WaitToClose() }()

	_, err := s0.GetValue(kv.New("nope", 0))
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGetValueWrongNodeErrors(t *testing.T) {
	s0, s1 := newPair(t)
	defer func() { s0.StopService(); s0.WaitToClose() }()
	defer func() { s1.StopService(); s1.WaitToClose() }()

	if _, err := s0.GetValue(kv.New("x", 1)); err == nil {
		t.Fatal("expected error for non-local key")
	}
}

func TestRemotePutThenGetAndWait(t *testing.T) {
	s0, s1 := newPair(t)
	defer func() { s0.StopService(); s0.WaitToClose() }()
	defer func() { s1.StopService(); s1.WaitToClose() }()

	k := kv.New("y", 1)
	v := kv.NewValue([]byte("remote value"))
	if err := s0.Put(k, v); err != nil {
		t.Fatal(err)
	}

	got, err := s0.GetAndWaitValue(k)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Bytes(), v.Bytes()) {
		t.Fatalf("got %q want %q", got.Bytes(), v.Bytes())
	}
}

func TestGetAndWaitBlocksUntilPut(t *testing.T) {
	s0, s1 := newPair(t)
	defer func() { s0.StopService(); s0.WaitToClose() }()
	defer func() { s1.StopService(); s1.WaitToClose() }()

	k := kv.New("late", 1)
	v := kv.NewValue([]byte("arrived late"))

	done := make(chan struct{})
	var got kv.Value
	var getErr error
	go func() {
		got, getErr = s0.GetAndWaitValue(k)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("GetAndWaitValue returned before the value was put")
	default:
	}

	if err := s1.Put(k, v); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("GetAndWaitValue never returned")
	}
	if getErr != nil {
		t.Fatal(getErr)
	}
	if !bytes.Equal(got.Bytes(), v.Bytes()) {
		t.Fatalf("got %q want %q", got.Bytes(), v.Bytes())
	}
}

func TestLocalGetAndWaitBlocksUntilPut(t *testing.T) {
	s0, s1 := newPair(t)
	defer func() { s0.StopService(); s0.WaitToClose() }()
	defer func() { s1.StopService(); s1.WaitToClose() }()

	k := kv.New("local-late", 0)
	v := kv.NewValue([]byte("local arrival"))

	done := make(chan kv.Value)
	go func() {
		got, err := s0.GetAndWaitValue(k)
		if err != nil {
			t.Error(err)
		}
		done <- got
	}()

	time.Sleep(20 * time.Millisecond)
	if err := s0.Put(k, v); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-done:
		if !bytes.Equal(got.Bytes(), v.Bytes()) {
			t.Fatalf("got %q want %q", got.Bytes(), v.Bytes())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("GetAndWaitValue never returned")
	}
}

func TestPlaceKeyDeterministic(t *testing.T) {
	s0, s1 := newPair(t)
	defer func() { s0.StopService(); s0.WaitToClose() }()
	defer func() { s1.StopService(); s1.WaitToClose() }()

	a := s0.PlaceKey("some-name")
	b := s0.PlaceKey("some-name")
	if a != b {
		t.Fatalf("PlaceKey not deterministic: %v != %v", a, b)
	}
	if a.Node < 0 || a.Node >= s0.Size() {
		t.Fatalf("PlaceKey produced out-of-range node %d", a.Node)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	s0, s1 := newPair(t)
	defer func() { s0.StopService(); s0.WaitToClose() }()
	defer func() { s1.StopService(); s1.WaitToClose() }()

	big := bytes.Repeat([]byte("abcdefgh"), 2000) // well above CompressThreshold
	k := kv.New("big", 0)
	if err := s0.Put(k, kv.NewValue(big)); err != nil {
		t.Fatal(err)
	}
	got, err := s0.GetValue(k)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Bytes(), big) {
		t.Fatal("compressed round trip corrupted data")
	}
}
