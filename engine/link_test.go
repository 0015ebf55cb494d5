package engine_test

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"i4.energy/across/qube/engine"
)

func linkConfig(t *testing.T, dialer engine.Dialer, startup time.Duration) engine.Config {
	t.Helper()
	config, err := engine.NewConfigBuilder().
		WithDialer(dialer).
		WithStartupInterval(startup).
		Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}
	return config
}

func waitForState(t *testing.T, d *engine.Device[probe], state string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for d.State() != state {
		if time.Now().After(deadline) {
			t.Fatalf("device stuck in %s, want %s", d.State(), state)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewLink(t *testing.T) {
	t.Run("Initializes the endpoint", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTransport := engine.NewMockTransport(ctrl)
		mockDialer := engine.NewMockDialer(ctrl)
		mockDialer.EXPECT().Dial(gomock.Any()).Return(mockTransport, nil)

		d := newProbe(t)
		l, err := engine.NewLink(context.Background(), d, linkConfig(t, mockDialer, time.Hour))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.State() != engine.StateStartup {
			t.Errorf("unexpected state %s", d.State())
		}

		mockTransport.EXPECT().Close().Return(nil)
		if err := l.Close(); err != nil {
			t.Errorf("unexpected error from Close(): %v", err)
		}
	})

	t.Run("Dialer error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDialer := engine.NewMockDialer(ctrl)
		mockDialer.EXPECT().Dial(gomock.Any()).Return(nil, errors.New("connection failed"))

		l, err := engine.NewLink(context.Background(), newProbe(t), linkConfig(t, mockDialer, time.Hour))
		if err == nil {
			t.Error("expected error from dialer failure")
		}
		if l != nil {
			t.Error("NewLink() should return nil link when dialer fails")
		}
	})

	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		_, err := engine.NewLink(context.Background(), newProbe(t), engine.Config{})
		if !errors.Is(err, engine.ErrNoDialer) {
			t.Errorf("expected ErrNoDialer, got: %v", err)
		}
	})

	t.Run("ErrNoEndpoint when no device provided", func(t *testing.T) {
		_, err := engine.NewLink(context.Background(), nil, engine.Config{Dialer: engine.NewTestTransport()})
		if !errors.Is(err, engine.ErrNoEndpoint) {
			t.Errorf("expected ErrNoEndpoint, got: %v", err)
		}
	})
}

func TestLinkClose(t *testing.T) {
	t.Run("ErrAlreadyClosed on double close", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTransport := engine.NewMockTransport(ctrl)
		mockDialer := engine.NewMockDialer(ctrl)
		gomock.InOrder(
			mockDialer.EXPECT().Dial(gomock.Any()).Return(mockTransport, nil),
			mockTransport.EXPECT().Close().Return(nil),
		)

		l, err := engine.NewLink(context.Background(), newProbe(t), linkConfig(t, mockDialer, time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if err := l.Close(); err != nil {
			t.Errorf("unexpected error from first Close(): %v", err)
		}
		if err := l.Close(); !errors.Is(err, engine.ErrAlreadyClosed) {
			t.Errorf("expected ErrAlreadyClosed, got: %v", err)
		}
	})

	t.Run("Returns transport error on close failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTransport := engine.NewMockTransport(ctrl)
		mockDialer := engine.NewMockDialer(ctrl)
		closeErr := errors.New("port busy")
		gomock.InOrder(
			mockDialer.EXPECT().Dial(gomock.Any()).Return(mockTransport, nil),
			mockTransport.EXPECT().Close().Return(closeErr),
		)

		l, err := engine.NewLink(context.Background(), newProbe(t), linkConfig(t, mockDialer, time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if err := l.Close(); !errors.Is(err, closeErr) {
			t.Errorf("expected transport error, got: %v", err)
		}
	})
}

func TestLinkLoop(t *testing.T) {
	t.Run("Starts and stops on EOF", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTransport := engine.NewMockTransport(ctrl)
		mockDialer := engine.NewMockDialer(ctrl)
		mockDialer.EXPECT().Dial(gomock.Any()).Return(mockTransport, nil)

		l, err := engine.NewLink(context.Background(), newProbe(t), linkConfig(t, mockDialer, time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		defer l.Close()

		allowEOF := make(chan struct{})
		mockTransport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			<-allowEOF
			return 0, io.EOF
		})
		mockTransport.EXPECT().Close().Return(nil)

		loopDone := make(chan error, 1)
		go func() {
			loopDone <- l.Loop(context.Background())
		}()

		close(allowEOF)
		if err := <-loopDone; !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF, got: %v", err)
		}
	})

	t.Run("Writes startup frames in table order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTransport := engine.NewMockTransport(ctrl)
		mockDialer := engine.NewMockDialer(ctrl)
		gomock.InOrder(slices.Concat(
			[]any{
				mockDialer.EXPECT().Dial(gomock.Any()).Return(mockTransport, nil),
			},
			NewMockSequence(mockTransport).Startup().Build(),
		)...)

		release := make(chan struct{})
		mockTransport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			<-release
			return 0, io.EOF
		})
		mockTransport.EXPECT().Close().Return(nil)

		d := newProbe(t)
		l, err := engine.NewLink(context.Background(), d, linkConfig(t, mockDialer, 2*time.Millisecond))
		if err != nil {
			t.Fatal(err)
		}
		defer l.Close()

		loopDone := make(chan error, 1)
		go func() {
			loopDone <- l.Loop(context.Background())
		}()

		waitForState(t, d, engine.StateReady)
		close(release)
		if err := <-loopDone; !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF, got: %v", err)
		}
	})

	t.Run("Feeds received bytes and writes queued frames", func(t *testing.T) {
		tt := engine.NewTestTransport()
		d := newProbe(t)
		l, err := engine.NewLink(context.Background(), d, linkConfig(t, tt, time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		defer l.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go l.Loop(ctx)

		tt.SendData("noise" + string(frame("AB", "5")))
		if got, err := d.Signals().Wait(ctx, flagAB, time.Second); err != nil || got != flagAB {
			t.Fatalf("expected AB to be dispatched, got %b/%v", got, err)
		}

		want := frame("NOTE", "out")
		if err := d.Enqueue(ctx, want); err != nil {
			t.Fatal(err)
		}
		select {
		case got := <-tt.Written():
			if string(got) != string(want) {
				t.Errorf("written %q, want %q", got, want)
			}
		case <-time.After(time.Second):
			t.Fatal("queued frame was not written")
		}
	})

	t.Run("Exits gracefully on context cancellation", func(t *testing.T) {
		tt := engine.NewTestTransport()
		l, err := engine.NewLink(context.Background(), newProbe(t), linkConfig(t, tt, time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		defer l.Close()

		ctx, cancel := context.WithCancel(context.Background())
		loopDone := make(chan error, 1)
		go func() {
			loopDone <- l.Loop(ctx)
		}()

		cancel()
		if err := <-loopDone; !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
	})

	t.Run("Close stops a running loop", func(t *testing.T) {
		tt := engine.NewTestTransport()
		l, err := engine.NewLink(context.Background(), newProbe(t), linkConfig(t, tt, time.Hour))
		if err != nil {
			t.Fatal(err)
		}

		loopDone := make(chan error, 1)
		go func() {
			loopDone <- l.Loop(context.Background())
		}()

		time.Sleep(5 * time.Millisecond)
		if err := l.Close(); err != nil {
			t.Fatal(err)
		}
		select {
		case <-loopDone:
		case <-time.After(time.Second):
			t.Fatal("loop did not stop after Close")
		}
	})

	t.Run("Propagates transport read errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTransport := engine.NewMockTransport(ctrl)
		mockDialer := engine.NewMockDialer(ctrl)
		readErr := errors.New("framing error")
		mockDialer.EXPECT().Dial(gomock.Any()).Return(mockTransport, nil)
		mockTransport.EXPECT().Read(gomock.Any()).Return(0, readErr)
		mockTransport.EXPECT().Close().Return(nil)

		l, err := engine.NewLink(context.Background(), newProbe(t), linkConfig(t, mockDialer, time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		defer l.Close()

		if err := l.Loop(context.Background()); !errors.Is(err, readErr) {
			t.Errorf("expected read error, got: %v", err)
		}
	})

	t.Run("ErrLoopRunning on consecutive calls", func(t *testing.T) {
		tt := engine.NewTestTransport()
		l, err := engine.NewLink(context.Background(), newProbe(t), linkConfig(t, tt, time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		defer l.Close()

		ctx, cancel := context.WithCancel(context.Background())
		loopDone := make(chan error, 1)
		go func() {
			loopDone <- l.Loop(ctx)
		}()
		time.Sleep(10 * time.Millisecond)

		if err := l.Loop(ctx); !errors.Is(err, engine.ErrLoopRunning) {
			t.Errorf("expected ErrLoopRunning, got: %v", err)
		}
		cancel()
		<-loopDone
	})
}
