// Package revai is a small client for the Rev.ai asynchronous
// speech-to-text API: submit a job for a public media URL, read its status,
// and fetch the finished transcript as plain text.
package revai
