// Package narration turns ordered slide texts into index-aligned audio files.
//
// Cloud speaks through the OpenAI speech endpoint and writes audio_<i>.mp3;
// Offline drives a local espeak-ng engine and writes audio_<i>.wav. Both
// honour the same contract: N texts in, N assets out, asset i for text i.
package narration
