//go:build windows

package device

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/dshills/macrokit/internal/input/key"
	"github.com/dshills/macrokit/internal/input/mouse"
	"github.com/dshills/macrokit/internal/logging"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSendInput           = user32.NewProc("SendInput")
	procSetCursorPos        = user32.NewProc("SetCursorPos")
	procVkKeyScanW          = user32.NewProc("VkKeyScanW")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	keyeventfKeyUp = 0x0002

	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040
	mouseeventfWheel      = 0x0800

	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmMouseHWheel = 0x020E

	winWheelDelta = 120
)

type mouseInput struct {
	Dx        int32
	Dy        int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// INPUT with the mouse union member, which is the largest.
type inputMouseRecord struct {
	Type uint32
	_    [4]byte
	Mi   mouseInput
}

// INPUT with the keyboard union member, padded to the same size.
type inputKeyboardRecord struct {
	Type uint32
	_    [4]byte
	Ki   keybdInput
	_    [unsafe.Sizeof(mouseInput{}) - unsafe.Sizeof(keybdInput{})]byte
}

type point struct {
	X, Y int32
}

type msllHookStruct struct {
	Pt        point
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type kbdllHookStruct struct {
	VkCode    uint32
	ScanCode  uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

func openWindows(logger *logging.Logger) (Source, Sink, error) {
	if err := user32.Load(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return NewWindowsSource(logger), NewWindowsSink(logger), nil
}

// WindowsSink injects input with SendInput.
type WindowsSink struct {
	logger *logging.Logger
}

// NewWindowsSink creates a WindowsSink.
func NewWindowsSink(logger *logging.Logger) *WindowsSink {
	return &WindowsSink{logger: logging.OrNop(logger).WithField("sink", "windows")}
}

func (s *WindowsSink) MoveTo(x, y int) error {
	ret, _, err := procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y)))
	if ret == 0 {
		return fmt.Errorf("SetCursorPos: %w", err)
	}
	return nil
}

func (s *WindowsSink) sendMouse(flags, data uint32) error {
	in := inputMouseRecord{Type: inputMouse, Mi: mouseInput{Flags: flags, MouseData: data}}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if ret == 0 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}

func (s *WindowsSink) sendKey(vk uint16, flags uint32) error {
	in := inputKeyboardRecord{Type: inputKeyboard, Ki: keybdInput{Vk: vk, Flags: flags}}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if ret == 0 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}

func (s *WindowsSink) ButtonDown(b mouse.Button) error {
	switch b {
	case mouse.ButtonLeft:
		return s.sendMouse(mouseeventfLeftDown, 0)
	case mouse.ButtonRight:
		return s.sendMouse(mouseeventfRightDown, 0)
	case mouse.ButtonMiddle:
		return s.sendMouse(mouseeventfMiddleDown, 0)
	}
	return fmt.Errorf("%w: %s", ErrUnknownButton, b)
}

func (s *WindowsSink) ButtonUp(b mouse.Button) error {
	switch b {
	case mouse.ButtonLeft:
		return s.sendMouse(mouseeventfLeftUp, 0)
	case mouse.ButtonRight:
		return s.sendMouse(mouseeventfRightUp, 0)
	case mouse.ButtonMiddle:
		return s.sendMouse(mouseeventfMiddleUp, 0)
	}
	return fmt.Errorf("%w: %s", ErrUnknownButton, b)
}

// Scroll sends dy wheel units; 120 units make one notch.
func (s *WindowsSink) Scroll(dy int) error {
	if dy == 0 {
		return nil
	}
	return s.sendMouse(mouseeventfWheel, uint32(int32(dy)))
}

func (s *WindowsSink) virtualKey(ev key.Event) (uint16, error) {
	if vk, ok := VirtualKey(ev); ok {
		return vk, nil
	}
	if ev.Key == key.KeyRune && ev.Rune != 0 && ev.Rune <= 0xFFFF {
		ret, _, _ := procVkKeyScanW.Call(uintptr(ev.Rune))
		if int16(ret) != -1 {
			return uint16(ret & 0xFF), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownKey, ev)
}

func (s *WindowsSink) KeyDown(ev key.Event) error {
	vk, err := s.virtualKey(ev)
	if err != nil {
		return err
	}
	return s.sendKey(vk, 0)
}

func (s *WindowsSink) KeyUp(ev key.Event) error {
	vk, err := s.virtualKey(ev)
	if err != nil {
		return err
	}
	return s.sendKey(vk, keyeventfKeyUp)
}

func (s *WindowsSink) Close() error { return nil }

// hookTarget receives events from the process-wide low-level hooks. Only
// one WindowsSource can capture at a time.
var (
	hookMu     sync.RWMutex
	hookTarget Listener

	mouseProc    = windows.NewCallback(lowLevelMouseProc)
	keyboardProc = windows.NewCallback(lowLevelKeyboardProc)
)

// WindowsSource captures input with low-level mouse and keyboard hooks.
// The hooks run on a dedicated OS thread with its own message loop.
type WindowsSource struct {
	logger *logging.Logger

	mu       sync.Mutex
	threadID uint32
	done     chan struct{}
}

// NewWindowsSource creates a WindowsSource.
func NewWindowsSource(logger *logging.Logger) *WindowsSource {
	return &WindowsSource{logger: logging.OrNop(logger).WithField("source", "windows")}
}

// Start installs the hooks.
func (s *WindowsSource) Start(l Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return ErrAlreadyStarted
	}

	hookMu.Lock()
	if hookTarget != nil {
		hookMu.Unlock()
		return ErrAlreadyStarted
	}
	hookTarget = l
	hookMu.Unlock()

	ready := make(chan error, 1)
	done := make(chan struct{})
	go s.loop(ready, done)

	if err := <-ready; err != nil {
		<-done
		clearHookTarget()
		return err
	}
	s.done = done
	return nil
}

func (s *WindowsSource) loop(ready chan<- error, done chan<- struct{}) {
	defer close(done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	mh, _, err := procSetWindowsHookExW.Call(whMouseLL, mouseProc, 0, 0)
	if mh == 0 {
		ready <- fmt.Errorf("installing mouse hook: %w", err)
		return
	}
	defer procUnhookWindowsHookEx.Call(mh)

	kh, _, err := procSetWindowsHookExW.Call(whKeyboardLL, keyboardProc, 0, 0)
	if kh == 0 {
		ready <- fmt.Errorf("installing keyboard hook: %w", err)
		return
	}
	defer procUnhookWindowsHookEx.Call(kh)

	s.mu.Lock()
	s.threadID = windows.GetCurrentThreadId()
	s.mu.Unlock()
	ready <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			return
		}
	}
}

// Stop removes the hooks and ends the message loop.
func (s *WindowsSource) Stop() error {
	s.mu.Lock()
	done, tid := s.done, s.threadID
	s.done = nil
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	clearHookTarget()
	ret, _, err := procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
	if ret == 0 {
		return fmt.Errorf("stopping hook thread: %w", err)
	}
	<-done
	return nil
}

func clearHookTarget() {
	hookMu.Lock()
	hookTarget = nil
	hookMu.Unlock()
}

func dispatch(fn func(Listener)) {
	hookMu.RLock()
	defer hookMu.RUnlock()
	if hookTarget != nil {
		fn(hookTarget)
	}
}

func callNext(nCode int, wParam, lParam uintptr) uintptr {
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

// wheelSteps converts the signed high word of a hook's mouse data into
// wheel notches.
func wheelSteps(mouseData uint32) int {
	return int(int16(mouseData>>16)) / winWheelDelta
}

func lowLevelMouseProc(nCode int, wParam, lParam uintptr) uintptr {
	if nCode >= 0 {
		info := (*msllHookStruct)(unsafe.Pointer(lParam))
		x, y := int(info.Pt.X), int(info.Pt.Y)
		switch wParam {
		case wmMouseMove:
			dispatch(func(l Listener) { l.OnMove(x, y) })
		case wmLButtonDown, wmLButtonUp:
			pressed := wParam == wmLButtonDown
			dispatch(func(l Listener) { l.OnClick(x, y, "left", pressed) })
		case wmRButtonDown, wmRButtonUp:
			pressed := wParam == wmRButtonDown
			dispatch(func(l Listener) { l.OnClick(x, y, "right", pressed) })
		case wmMButtonDown, wmMButtonUp:
			pressed := wParam == wmMButtonDown
			dispatch(func(l Listener) { l.OnClick(x, y, "middle", pressed) })
		case wmMouseWheel:
			dy := wheelSteps(info.MouseData)
			dispatch(func(l Listener) { l.OnScroll(x, y, 0, dy) })
		case wmMouseHWheel:
			dx := wheelSteps(info.MouseData)
			dispatch(func(l Listener) { l.OnScroll(x, y, dx, 0) })
		}
	}
	return callNext(nCode, wParam, lParam)
}

func lowLevelKeyboardProc(nCode int, wParam, lParam uintptr) uintptr {
	if nCode >= 0 {
		info := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		token := vkToken(uint16(info.VkCode))
		switch wParam {
		case wmKeyDown, wmSysKeyDown:
			dispatch(func(l Listener) { l.OnKeyPress(token) })
		case wmKeyUp, wmSysKeyUp:
			dispatch(func(l Listener) { l.OnKeyRelease(token) })
		}
	}
	return callNext(nCode, wParam, lParam)
}
