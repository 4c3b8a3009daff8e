package kv_test

import (
	"context"
	"testing"

	"github.com/huddleapp/huddle/internal/adapters/kv"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given a collection and an id", t, func() {
		So(kv.Key("profiles", "user-1"), ShouldEqual, "profiles/user-1")
		So(kv.Key("interactions", ""), ShouldEqual, "interactions/")
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		ctx := context.Background()
		store := kv.NewMemoryStore()

		Convey("When reading a missing key", func() {
			_, err := store.Get(ctx, "profiles/nope")

			Convey("Then it reports ErrKeyNotFound", func() {
				So(err, ShouldWrap, kv.ErrKeyNotFound)
			})
		})

		Convey("When writing and reading back a value", func() {
			So(store.Set(ctx, "profiles/user-1", []byte(`{"a":1}`)), ShouldBeNil)
			got, err := store.Get(ctx, "profiles/user-1")

			Convey("Then the stored blob is returned", func() {
				So(err, ShouldBeNil)
				So(string(got), ShouldEqual, `{"a":1}`)
			})

			Convey("And mutating the returned slice does not corrupt the store", func() {
				got[0] = 'X'
				again, err := store.Get(ctx, "profiles/user-1")
				So(err, ShouldBeNil)
				So(string(again), ShouldEqual, `{"a":1}`)
			})
		})

		Convey("When overwriting a key", func() {
			So(store.Set(ctx, "k", []byte("v1")), ShouldBeNil)
			So(store.Set(ctx, "k", []byte("v2")), ShouldBeNil)
			got, err := store.Get(ctx, "k")
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, "v2")
		})

		Convey("When deleting a key", func() {
			So(store.Set(ctx, "k", []byte("v")), ShouldBeNil)
			So(store.Delete(ctx, "k"), ShouldBeNil)
			_, err := store.Get(ctx, "k")
			So(err, ShouldWrap, kv.ErrKeyNotFound)

			Convey("And deleting it again is not an error", func() {
				So(store.Delete(ctx, "k"), ShouldBeNil)
			})
		})

		Convey("When the store is closed", func() {
			So(store.Close(), ShouldBeNil)

			Convey("Then operations fail with ErrStoreClosed", func() {
				So(store.Set(ctx, "k", []byte("v")), ShouldWrap, kv.ErrStoreClosed)
				_, err := store.Get(ctx, "k")
				So(err, ShouldWrap, kv.ErrStoreClosed)
			})
		})
	})
}

func TestBadgerStore(t *testing.T) {
	Convey("Given an in-memory badger store", t, func() {
		ctx := context.Background()
		store, err := kv.NewBadgerStore("", kv.WithInMemory())
		So(err, ShouldBeNil)
		defer func() { _ = store.Close() }()

		Convey("When reading a missing key", func() {
			_, err := store.Get(ctx, "profiles/nope")
			So(err, ShouldWrap, kv.ErrKeyNotFound)
		})

		Convey("When writing and reading back a value", func() {
			So(store.Set(ctx, "profiles/user-1", []byte(`{"a":1}`)), ShouldBeNil)
			got, err := store.Get(ctx, "profiles/user-1")
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, `{"a":1}`)
		})

		Convey("When deleting keys", func() {
			So(store.Set(ctx, "k", []byte("v")), ShouldBeNil)
			So(store.Delete(ctx, "k"), ShouldBeNil)
			_, err := store.Get(ctx, "k")
			So(err, ShouldWrap, kv.ErrKeyNotFound)
			So(store.Delete(ctx, "k"), ShouldBeNil)
		})
	})
}
