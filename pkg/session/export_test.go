package session

var DecodeSession = decodeSession
