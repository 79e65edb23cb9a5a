package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncHook là một hook để ghi log bất đồng bộ, tránh blocking request handling.
// Hook này buffer log entries và ghi chúng vào các writers trong một goroutine riêng.
// Hỗ trợ nhiều writers (file, stdout, ...) để tránh blocking.
type AsyncHook struct {
	writers    []io.Writer // Danh sách các writers (file, stdout, ...)
	entries    chan *logrus.Entry
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
	bufferSize int
}

// NewAsyncHookWithWriters tạo một async hook mới với nhiều writers.
// bufferSize: kích thước buffer cho log entries (mặc định 1000).
func NewAsyncHookWithWriters(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers:    writers,
		entries:    make(chan *logrus.Entry, bufferSize),
		bufferSize: bufferSize,
	}

	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

// Levels trả về các log levels mà hook này xử lý
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire được gọi mỗi khi có log entry mới.
// Hàm này không block, chỉ đưa entry vào channel; nếu channel đầy thì ghi trực tiếp.
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		return h.writeEntry(entry)
	}

	// Copy entry vì logrus tái sử dụng entry sau khi Fire trả về
	entryCopy := entry.Dup()
	entryCopy.Level = entry.Level
	entryCopy.Message = entry.Message

	select {
	case h.entries <- entryCopy:
		return nil
	default:
		// Buffer đầy: ghi trực tiếp thay vì drop log
		return h.writeEntry(entry)
	}
}

// processEntries xử lý log entries từ channel trong goroutine riêng
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()
	for entry := range h.entries {
		_ = h.writeEntry(entry)
	}
}

// writeEntry format và ghi một entry vào tất cả writers
func (h *AsyncHook) writeEntry(entry *logrus.Entry) error {
	var data []byte
	var err error

	if entry.Logger != nil && entry.Logger.Formatter != nil {
		data, err = entry.Logger.Formatter.Format(entry)
	} else {
		line, strErr := entry.String()
		if strErr != nil {
			return strErr
		}
		data = []byte(line)
	}
	if err != nil {
		return err
	}

	for _, writer := range h.writers {
		_, _ = writer.Write(data)
	}
	return nil
}

// Close đóng hook, flush các entries còn lại trong buffer
func (h *AsyncHook) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
}
