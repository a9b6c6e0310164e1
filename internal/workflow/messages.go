package workflow

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The console only ever shows the zh-Hans rendering.
const (
	msgSaved         = "saved"
	msgSaveFailed    = "save failed: %s"
	msgDeleted       = "deleted"
	msgDeleteFailed  = "delete failed: %s"
	msgSaveFirst     = "save the record before attaching an image"
	msgChooseImage   = "choose an image first"
	msgImageTooLarge = "image too large, compress it and retry"
	msgUploadFailed  = "upload failed: %s"
	msgUploadBusy    = "an image upload is still running"
	msgLoadFailed    = "load failed: %s"
	msgUnknownError  = "unknown error"
)

// consoleLang is the language of every status message.
var consoleLang = language.SimplifiedChinese

var zhHans = map[string]string{
	msgSaved:         "已保存",
	msgSaveFailed:    "保存失败：%s",
	msgDeleted:       "已删除",
	msgDeleteFailed:  "删除失败：%s",
	msgSaveFirst:     "请先保存以生成 ID",
	msgChooseImage:   "请先选择图片",
	msgImageTooLarge: "图片过大，请压缩后再上传",
	msgUploadFailed:  "上传失败：%s",
	msgUploadBusy:    "图片上传中，请稍候",
	msgLoadFailed:    "加载失败：%s",
	msgUnknownError:  "未知错误",
}

func init() {
	for key, msg := range zhHans {
		if err := message.SetString(consoleLang, key, msg); err != nil {
			panic(err)
		}
	}
}

// localize renders a status message. Printers keep per-call state, so one
// is created per message.
func localize(key string, args ...any) string {
	return message.NewPrinter(consoleLang).Sprintf(key, args...)
}

// cause is the text embedded in failure messages.
func cause(err error) string {
	if err == nil || err.Error() == "" {
		return localize(msgUnknownError)
	}
	return err.Error()
}
